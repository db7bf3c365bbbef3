package cli

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/vishalbelsare/sindy-3/pkg/config"
)

func TestToConfigAppliesDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	f := &Flags{}
	registerFlags(fs, f)
	require.NoError(t, fs.Parse(nil))

	cfg, err := f.toConfig()
	require.NoError(t, err)
	require.Equal(t, 16, cfg.NumColumnBits)
	require.Equal(t, -1, cfg.MaxArity)
	require.Equal(t, config.RestrictionNone, cfg.NaryIndRestriction)
	require.Equal(t, config.GeneratorApriori, cfg.CandidateGenerator)
	require.Equal(t, ",", string(cfg.CSV.FieldSeparator))
	require.True(t, cfg.CSV.HasHeader)
}

func TestToConfigRejectsUnknownRestriction(t *testing.T) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	f := &Flags{}
	registerFlags(fs, f)
	require.NoError(t, fs.Parse([]string{"--restriction=bogus"}))

	_, err := f.toConfig()
	require.Error(t, err)
}

func TestToConfigRejectsUnknownGenerator(t *testing.T) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	f := &Flags{}
	registerFlags(fs, f)
	require.NoError(t, fs.Parse([]string{"--generator=bogus"}))

	_, err := f.toConfig()
	require.Error(t, err)
}

func TestToConfigResolvesNoRepetitionsAndBinder(t *testing.T) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	f := &Flags{}
	registerFlags(fs, f)
	require.NoError(t, fs.Parse([]string{"--restriction=no-repetitions", "--generator=binder"}))

	cfg, err := f.toConfig()
	require.NoError(t, err)
	require.Equal(t, config.RestrictionNoRepetitions, cfg.NaryIndRestriction)
	require.Equal(t, config.GeneratorBinder, cfg.CandidateGenerator)
	require.True(t, cfg.ExcludeVoidInds())
}

func TestToTablesRequiresAtLeastOneInput(t *testing.T) {
	f := &Flags{}
	_, err := f.toTables()
	require.Error(t, err)
}
