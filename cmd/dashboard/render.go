package main

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"CompteClient/internal/dashboard"
	"CompteClient/internal/gateway"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the dashboard once to an HTML file",
		Long: `Render loads the aggregates once and writes the page to a file, or to
stdout when the output is "-". When the data cannot be loaded the error page
is written and the command fails.`,
		RunE: runRender,
	}
	cmd.Flags().StringP("output", "o", "-", "Output file")
	return cmd
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("output")

	svc := dashboard.NewService(gateway.New(cfg.Database.Driver, cfg.Database.Path))

	var buf bytes.Buffer
	loadErr := svc.WritePage(cmd.Context(), &buf)

	if out == "-" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write page: %w", err)
		}
		log.Printf("[INFO] page written to %s", out)
	}
	return loadErr
}
