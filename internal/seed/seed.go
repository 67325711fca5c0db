// Package seed loads the flat source files into an empty dataset.
package seed

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/churnlytics/internal/config"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/internal/importer/normalizer"
	"github.com/smallbiznis/churnlytics/internal/importer/parser"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MembersFile  = "members.csv"
	CheckinsFile = "checkins.csv"
	SalesFile    = "sales.csv"
	LeadsFile    = "leads.csv"

	bootstrapTimeout = 2 * time.Minute
)

var Module = fx.Module("seed",
	fx.Provide(New),
	fx.Invoke(func(s *Seeder, cfg config.Config) error {
		if !cfg.SeedOnEmpty {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
		defer cancel()
		_, err := s.Bootstrap(ctx, cfg.DataDir)
		return err
	}),
)

type Params struct {
	fx.In

	Repo  dataset.Repository
	Log   *zap.Logger
	GenID *snowflake.Node
	Fees  *config.MembershipConfigHolder
}

type Seeder struct {
	repo  dataset.Repository
	log   *zap.Logger
	genID *snowflake.Node
	fees  *config.MembershipConfigHolder
}

func New(p Params) *Seeder {
	return &Seeder{
		repo:  p.Repo,
		log:   p.Log.Named("seed"),
		genID: p.GenID,
		fees:  p.Fees,
	}
}

// Bootstrap loads dataDir only when every dataset table is empty. It reports
// whether anything was loaded.
func (s *Seeder) Bootstrap(ctx context.Context, dataDir string) (bool, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return false, err
	}
	if !counts.Empty() {
		s.log.Debug("dataset already populated, skipping seed",
			zap.Int64("members", counts.Members),
			zap.Int64("checkins", counts.Checkins),
		)
		return false, nil
	}

	loaded, err := s.Load(ctx, dataDir, dataset.ModeReplace)
	if err != nil {
		return false, err
	}
	return !loaded.Empty(), nil
}

type parsed struct {
	members  []dataset.Member
	checkins []dataset.Checkin
	sales    []dataset.Sale
	leads    []dataset.Lead
}

// Load parses the four source files concurrently and writes them one table
// at a time. Missing files are skipped.
func (s *Seeder) Load(ctx context.Context, dataDir string, mode dataset.WriteMode) (dataset.Counts, error) {
	var out parsed
	fees := s.feeSchedule()

	var g errgroup.Group
	g.Go(func() error {
		batch, ok, err := s.read(dataDir, MembersFile)
		if err != nil || !ok {
			return err
		}
		if batch, err = normalizer.Members(batch, fees); err != nil {
			return fileErr(MembersFile, err)
		}
		out.members, err = normalizer.ToMembers(batch)
		return fileErr(MembersFile, err)
	})
	g.Go(func() error {
		batch, ok, err := s.read(dataDir, CheckinsFile)
		if err != nil || !ok {
			return err
		}
		if batch, err = normalizer.Checkins(batch); err != nil {
			return fileErr(CheckinsFile, err)
		}
		out.checkins, err = normalizer.ToCheckins(batch, s.genID)
		return fileErr(CheckinsFile, err)
	})
	g.Go(func() error {
		batch, ok, err := s.read(dataDir, SalesFile)
		if err != nil || !ok {
			return err
		}
		if batch, err = normalizer.Sales(batch); err != nil {
			return fileErr(SalesFile, err)
		}
		out.sales, err = normalizer.ToSales(batch, s.genID)
		return fileErr(SalesFile, err)
	})
	g.Go(func() error {
		batch, ok, err := s.read(dataDir, LeadsFile)
		if err != nil || !ok {
			return err
		}
		if batch, err = normalizer.Leads(batch); err != nil {
			return fileErr(LeadsFile, err)
		}
		out.leads, err = normalizer.ToLeads(batch, s.genID)
		return fileErr(LeadsFile, err)
	})
	if err := g.Wait(); err != nil {
		s.log.Error("failed to parse seed files", zap.String("data_dir", dataDir), zap.Error(err))
		return dataset.Counts{}, err
	}

	if out.members != nil {
		if err := s.repo.WriteMembers(ctx, out.members, mode); err != nil {
			return dataset.Counts{}, err
		}
	}
	if out.checkins != nil {
		if err := s.repo.WriteCheckins(ctx, out.checkins, mode); err != nil {
			return dataset.Counts{}, err
		}
	}
	if out.sales != nil {
		if err := s.repo.WriteSales(ctx, out.sales, mode); err != nil {
			return dataset.Counts{}, err
		}
	}
	if out.leads != nil {
		if err := s.repo.WriteLeads(ctx, out.leads, mode); err != nil {
			return dataset.Counts{}, err
		}
	}

	loaded := dataset.Counts{
		Members:  int64(len(out.members)),
		Checkins: int64(len(out.checkins)),
		Sales:    int64(len(out.sales)),
		Leads:    int64(len(out.leads)),
	}
	s.log.Info("dataset seeded",
		zap.String("data_dir", dataDir),
		zap.String("mode", string(mode)),
		zap.Int64("members", loaded.Members),
		zap.Int64("checkins", loaded.Checkins),
		zap.Int64("sales", loaded.Sales),
		zap.Int64("leads", loaded.Leads),
	)
	return loaded, nil
}

func (s *Seeder) read(dataDir, name string) (domain.Batch, bool, error) {
	path := filepath.Join(dataDir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("seed file not found, skipping", zap.String("path", path))
			return domain.Batch{}, false, nil
		}
		return domain.Batch{}, false, apperror.Processing("open "+name, err)
	}
	defer f.Close()

	batch, err := parser.Parse(name, f)
	if err != nil {
		return domain.Batch{}, false, fileErr(name, err)
	}
	return batch, true, nil
}

func (s *Seeder) feeSchedule() dataset.FeeSchedule {
	cfg := config.DefaultMembershipConfig()
	if s.fees != nil {
		cfg = s.fees.Get()
	}
	return dataset.NewFeeSchedule(cfg.DefaultFees, cfg.FallbackFee)
}

func fileErr(name string, err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsValidation(err) {
		return apperror.Validation("%s: %v", name, err)
	}
	return apperror.Processing("seed "+name, err)
}
