package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/churnlytics/internal/clock"
	"github.com/smallbiznis/churnlytics/internal/config"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/internal/importer/normalizer"
	"github.com/smallbiznis/churnlytics/internal/importer/parser"
	"github.com/smallbiznis/churnlytics/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/churnlytics/internal/observability/metrics"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type Params struct {
	fx.In

	Writer  dataset.Writer
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Fees    *config.MembershipConfigHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	writer  dataset.Writer
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	fees    *config.MembershipConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		writer:  p.Writer,
		log:     p.Log.Named("importer.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		fees:    p.Fees,
		metrics: p.Metrics,
	}
}

func (s *Service) Preview(ctx context.Context, filename string, r io.Reader) (domain.Preview, error) {
	batch, err := s.parse(filename, r)
	if err != nil {
		return domain.Preview{}, err
	}
	return buildPreview(SanitizeFilename(filename), batch), nil
}

func (s *Service) ImportMembers(ctx context.Context, filename string, r io.Reader, mode string) (domain.Result, error) {
	return s.importFile(ctx, domain.EntityMembers, filename, r, mode, func(ctx context.Context, batch domain.Batch, mode dataset.WriteMode) (domain.Batch, int, error) {
		batch, err := normalizer.Members(batch, s.feeSchedule())
		if err != nil {
			return batch, 0, err
		}
		rows, err := normalizer.ToMembers(batch)
		if err != nil {
			return batch, 0, err
		}
		return batch, len(rows), s.writer.WriteMembers(ctx, rows, mode)
	})
}

func (s *Service) ImportCheckins(ctx context.Context, filename string, r io.Reader, mode string) (domain.Result, error) {
	return s.importFile(ctx, domain.EntityCheckins, filename, r, mode, func(ctx context.Context, batch domain.Batch, mode dataset.WriteMode) (domain.Batch, int, error) {
		batch, err := normalizer.Checkins(batch)
		if err != nil {
			return batch, 0, err
		}
		rows, err := normalizer.ToCheckins(batch, s.genID)
		if err != nil {
			return batch, 0, err
		}
		return batch, len(rows), s.writer.WriteCheckins(ctx, rows, mode)
	})
}

func (s *Service) History(ctx context.Context, limit int) ([]dataset.ImportBatch, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.writer.ListImports(ctx, limit)
}

type writeFunc func(ctx context.Context, batch domain.Batch, mode dataset.WriteMode) (domain.Batch, int, error)

func (s *Service) importFile(ctx context.Context, entity, filename string, r io.Reader, rawMode string, write writeFunc) (domain.Result, error) {
	mode, err := dataset.ParseWriteMode(rawMode)
	if err != nil {
		return domain.Result{}, err
	}

	log := logger.WithImport(logger.WithContext(ctx, s.log), entity, string(mode))

	batch, err := s.parse(filename, r)
	if err != nil {
		return domain.Result{}, err
	}

	batch, imported, err := write(ctx, batch, mode)
	if err != nil {
		if apperror.IsValidation(err) {
			log.Info("import rejected", zap.String("reason", err.Error()))
		} else {
			log.Error("import failed", zap.Error(err))
		}
		return domain.Result{}, apperror.Processing("import "+entity, err)
	}

	name := SanitizeFilename(filename)
	s.record(ctx, log, entity, mode, name, imported, batch.Columns)
	s.metrics.RecordImport(ctx, entity, string(mode), imported)

	log.Info("import completed", zap.String("filename", name), zap.Int("rows", imported))
	return domain.Result{
		Success:      true,
		Message:      fmt.Sprintf("Imported %d %s", imported, noun(entity)),
		RowsImported: imported,
		Mode:         mode,
	}, nil
}

// record stores the import history entry. The rows are already committed,
// so a failure here is logged rather than returned.
func (s *Service) record(ctx context.Context, log *zap.Logger, entity string, mode dataset.WriteMode, filename string, rows int, columns []string) {
	encoded, err := json.Marshal(columns)
	if err != nil {
		log.Warn("failed to encode import columns", zap.Error(err))
		encoded = []byte("[]")
	}

	entry := &dataset.ImportBatch{
		ID:           s.genID.Generate(),
		Entity:       entity,
		Mode:         mode,
		Filename:     filename,
		RowsImported: rows,
		ColumnNames:  datatypes.JSON(encoded),
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.writer.RecordImport(ctx, entry); err != nil {
		log.Warn("failed to record import batch", zap.Error(err))
	}
}

func (s *Service) parse(filename string, r io.Reader) (domain.Batch, error) {
	if strings.TrimSpace(filename) == "" {
		return domain.Batch{}, apperror.Validation("No file selected")
	}
	if !parser.AllowedFile(filename) {
		return domain.Batch{}, apperror.Validation("Invalid file type")
	}
	return parser.Parse(filename, r)
}

func (s *Service) feeSchedule() dataset.FeeSchedule {
	cfg := config.DefaultMembershipConfig()
	if s.fees != nil {
		cfg = s.fees.Get()
	}
	return dataset.NewFeeSchedule(cfg.DefaultFees, cfg.FallbackFee)
}

// SanitizeFilename slugs the base name of an upload and keeps its extension.
func SanitizeFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	if idx := strings.LastIndexAny(filename, `/\`); idx >= 0 {
		filename = filename[idx+1:]
	}
	ext := parser.Extension(filename)
	base := strings.TrimSuffix(filename, filename[len(filename)-len(ext):])
	base = strings.TrimSuffix(base, ".")
	name := slug.Make(base)
	if name == "" {
		name = "upload"
	}
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func noun(entity string) string {
	if entity == domain.EntityCheckins {
		return "check-ins"
	}
	return entity
}
