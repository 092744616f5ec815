// Package dashboard assembles one rendering of the client account dashboard
// from the cached aggregates.
package dashboard

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"CompteClient/internal/metrics"
	"CompteClient/internal/model"
	"CompteClient/internal/render"
	"CompteClient/internal/view"
)

// Loader provides the aggregate dataset.
type Loader interface {
	Load(ctx context.Context) (*model.Dataset, error)
}

// Snapshot is everything needed to draw the page once.
type Snapshot struct {
	Dataset *model.Dataset
	Metrics model.Metrics
	Layout  view.Layout
	Meta    render.Meta
}

// Service builds snapshots from a Loader.
type Service struct {
	loader Loader
	now    func() time.Time
}

// NewService creates a Service.
func NewService(loader Loader) *Service {
	return &Service{loader: loader, now: time.Now}
}

// Snapshot loads the dataset and composes the page. A load failure is
// returned as is and nothing is composed.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	meta := s.meta()
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	meta.LoadedAt = ds.LoadedAt

	m := metrics.Derive(ds.TopDepositors, ds.Branches)
	return &Snapshot{
		Dataset: ds,
		Metrics: m,
		Layout:  view.Compose(ds, m),
		Meta:    meta,
	}, nil
}

// WritePage writes the full page, or the error page when the data could not
// be loaded. The load error is returned after the error page is written.
func (s *Service) WritePage(ctx context.Context, w io.Writer) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		if werr := render.ErrorPage(w, Title, err, s.meta()); werr != nil {
			return werr
		}
		return err
	}
	return render.Page(w, snap.Layout, snap.Meta)
}

// Title is the page title.
const Title = "Compte client"

func (s *Service) meta() render.Meta {
	return render.Meta{RenderID: uuid.NewString(), GeneratedAt: s.now()}
}
