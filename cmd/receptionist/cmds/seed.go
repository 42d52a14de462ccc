package cmds

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML layout accepted by the seed command.
type Fixture struct {
	Accounts     []store.Account      `yaml:"accounts"`
	BusinessInfo []store.BusinessInfo `yaml:"business_info"`
}

func LoadFixture(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixture %s", path)
	}
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse fixture %s", path)
	}
	for i, a := range f.Accounts {
		if a.AccountID == "" {
			return nil, errors.Errorf("account %d has no account_id", i)
		}
	}
	return &f, nil
}

// Apply writes the fixture into s, replacing accounts and business info with the same keys.
func (f *Fixture) Apply(ctx context.Context, s interface {
	store.AccountStore
	store.BusinessInfoStore
}) error {
	for _, a := range f.Accounts {
		if err := s.UpsertAccount(ctx, a); err != nil {
			return errors.Wrapf(err, "failed to seed account %s", a.AccountID)
		}
	}
	for _, bi := range f.BusinessInfo {
		if err := s.UpsertBusinessInfo(ctx, bi); err != nil {
			return errors.Wrapf(err, "failed to seed business info %s", bi.Topic)
		}
	}
	return nil
}

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed FIXTURE",
		Short: "Load accounts, slots and business information from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := LoadFixture(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := NewStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close(context.Background())
			}()

			if err := f.Apply(ctx, s); err != nil {
				return err
			}
			log.Info().Int("accounts", len(f.Accounts)).Int("business_info", len(f.BusinessInfo)).Msg("seeded store")
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d accounts and %d business info entries\n", len(f.Accounts), len(f.BusinessInfo))
			return nil
		},
	}
	return cmd
}
