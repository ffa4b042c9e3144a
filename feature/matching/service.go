package matching

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"facility-matcher/core/database"
	"facility-matcher/core/match"
	"facility-matcher/core/session"
	"facility-matcher/core/storage"
	"facility-matcher/core/table"

	"go.uber.org/zap"
)

var (
	// ErrInvalidSource is returned when a source names neither or both of object and table.
	ErrInvalidSource = errors.New("invalid source")
	// ErrSourceUnavailable is returned when the requested backend is not configured.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoResult is returned when exporting a session that has not been matched.
	ErrNoResult = errors.New("no matching result")
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportBaseName is the file name stem of exported results.
const ExportBaseName = "hf_name_matching_results"

// Source points at a facility list held in the bucket or the registry database.
type Source struct {
	Object string `json:"object,omitempty"`
	Table  string `json:"table,omitempty"`
}

// SourceRequest loads both lists of a session from storage or the database.
type SourceRequest struct {
	Primary   Source `json:"primary"`
	Reference Source `json:"reference"`
}

// RenameRequest maps old to new column names per list.
type RenameRequest struct {
	Primary   map[string]string `json:"primary"`
	Reference map[string]string `json:"reference"`
}

// MatchRequest selects the key columns and threshold. A nil threshold uses the configured default.
type MatchRequest struct {
	PrimaryColumn   string   `json:"primary_column"`
	ReferenceColumn string   `json:"reference_column"`
	Threshold       *float64 `json:"threshold,omitempty"`
}

// Export is a rendered result file.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Service drives matching sessions.
type Service struct {
	store  *session.Store
	client storage.Client
	bucket string
	tables *database.TableCache
	cfg    match.Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a matching service. client and tables may be nil when
// storage or the database is not configured.
func NewService(store *session.Store, client storage.Client, bucket string, tables *database.TableCache, cfg match.Config, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		client: client,
		bucket: bucket,
		tables: tables,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Create starts a new session.
func (s *Service) Create() session.Session {
	sess := s.store.Create()
	s.logger.Info("Session created", zap.String("session_id", sess.ID))
	return sess
}

// Get returns a session snapshot.
func (s *Service) Get(id string) (session.Session, error) {
	return s.store.Get(id)
}

// Upload attaches both lists to a session.
func (s *Service) Upload(id string, primary, reference table.Table) (session.Session, error) {
	return s.store.Update(id, func(sess *session.Session) error {
		return sess.Upload(primary, reference)
	})
}

// LoadSources fetches both lists from their sources and attaches them to a session.
func (s *Service) LoadSources(ctx context.Context, id string, req SourceRequest) (session.Session, error) {
	if _, err := s.store.Get(id); err != nil {
		return session.Session{}, err
	}

	primary, err := s.load(ctx, req.Primary)
	if err != nil {
		return session.Session{}, fmt.Errorf("primary: %w", err)
	}
	reference, err := s.load(ctx, req.Reference)
	if err != nil {
		return session.Session{}, fmt.Errorf("reference: %w", err)
	}

	return s.Upload(id, primary, reference)
}

func (s *Service) load(ctx context.Context, src Source) (table.Table, error) {
	switch {
	case src.Object != "" && src.Table != "", src.Object == "" && src.Table == "":
		return table.Table{}, fmt.Errorf("%w: set exactly one of object or table", ErrInvalidSource)
	case src.Object != "":
		if s.client == nil {
			return table.Table{}, fmt.Errorf("%w: storage not configured", ErrSourceUnavailable)
		}
		return storage.ReadTable(ctx, s.client, s.bucket, src.Object, table.ReadOptions{})
	default:
		if s.tables == nil {
			return table.Table{}, fmt.Errorf("%w: database not configured", ErrSourceUnavailable)
		}
		return s.tables.Get(ctx, src.Table)
	}
}

// Rename applies column renames.
func (s *Service) Rename(id string, req RenameRequest) (session.Session, error) {
	return s.store.Update(id, func(sess *session.Session) error {
		return sess.Rename(req.Primary, req.Reference)
	})
}

// SkipRename moves on to column selection.
func (s *Service) SkipRename(id string) (session.Session, error) {
	return s.store.Update(id, func(sess *session.Session) error {
		return sess.SkipRename()
	})
}

// Match reconciles the session's lists and stores the result.
func (s *Service) Match(ctx context.Context, id string, req MatchRequest) (*match.Result, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !sess.CanMatch() {
		return nil, fmt.Errorf("%w: match from %s", session.ErrInvalidTransition, sess.State)
	}

	threshold := s.cfg.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	l := s.logger.With(zap.String("session_id", id))
	start := time.Now()

	primary, reference := sess.Primary, sess.Reference
	res, err := match.Reconcile(ctx, *primary, *reference, req.PrimaryColumn, req.ReferenceColumn, s.cfg.Options(threshold))
	if err != nil {
		return nil, err
	}

	params := session.Params{PrimaryColumn: req.PrimaryColumn, ReferenceColumn: req.ReferenceColumn, Threshold: threshold}
	if _, err := s.store.Update(id, func(sess *session.Session) error {
		return sess.CompleteFrom(primary, reference, params, res)
	}); err != nil {
		return nil, err
	}

	l.Info("Matching completed",
		zap.Int("total", res.Summary.Total),
		zap.Int("matched", res.Summary.Matched),
		zap.Int("unmatched", res.Summary.Unmatched),
		zap.Int("orphans", res.Summary.Orphans),
		zap.Duration("took", time.Since(start)))

	return res, nil
}

// Result returns the stored result of a session.
func (s *Service) Result(id string) (*match.Result, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Result == nil {
		return nil, fmt.Errorf("%w: session is %s", ErrNoResult, sess.State)
	}
	return sess.Result, nil
}

// Export renders the stored result as csv or xlsx.
func (s *Service) Export(id, format string) (*Export, error) {
	res, err := s.Result(id)
	if err != nil {
		return nil, err
	}
	return Render(res, format)
}

// StoreExport renders the result and uploads it under exports/ in the bucket.
func (s *Service) StoreExport(ctx context.Context, id, format string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("%w: storage not configured", ErrSourceUnavailable)
	}
	exp, err := s.Export(id, format)
	if err != nil {
		return "", err
	}

	key, err := storage.PutExport(ctx, s.client, s.bucket, exp.FileName, exp.Data, exp.ContentType, s.now())
	if err != nil {
		return "", err
	}
	s.logger.Info("Export stored", zap.String("session_id", id), zap.String("key", key))
	return key, nil
}

// Reset returns a session to the upload step.
func (s *Service) Reset(id string) (session.Session, error) {
	return s.store.Update(id, func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

// Delete drops a session.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}

// Prune drops expired sessions.
func (s *Service) Prune() int {
	n := s.store.Prune()
	if n > 0 {
		s.logger.Debug("Pruned expired sessions", zap.Int("count", n))
	}
	return n
}

// Render writes a result in the given format.
func Render(res *match.Result, format string) (*Export, error) {
	var buf bytes.Buffer
	switch format {
	case FormatCSV, "":
		if err := table.WriteCSV(&buf, res.Columns, res.Values()); err != nil {
			return nil, err
		}
		return &Export{FileName: ExportBaseName + ".csv", ContentType: storage.ContentTypeCSV, Data: buf.Bytes()}, nil
	case FormatXLSX:
		if err := table.WriteXLSX(&buf, table.DefaultSheet, res.Columns, res.Values()); err != nil {
			return nil, err
		}
		return &Export{FileName: ExportBaseName + ".xlsx", ContentType: storage.ContentTypeXLSX, Data: buf.Bytes()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", table.ErrUnsupportedFormat, format)
	}
}
