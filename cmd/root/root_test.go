package root_test

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/kakeibo-csv/cmd/root"
	"kakeibo/kakeibo-csv/internal/config"
	"kakeibo/kakeibo-csv/internal/container"
	"kakeibo/kakeibo-csv/internal/models"
)

func TestRootCommand_Metadata(t *testing.T) {
	cmd := root.NewCmd()
	assert.Equal(t, "kakeibo-csv", cmd.Name())
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.PersistentPreRunE)
	assert.True(t, cmd.SilenceUsage)

	for _, name := range []string{"config", "log-level", "log-format", "db"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCommand_Args(t *testing.T) {
	cmd := root.NewCmd()
	assert.NoError(t, cmd.Args(cmd, []string{"a.csv"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a.csv", "b.db"}))
	assert.Error(t, cmd.Args(cmd, []string{"a.csv", "b.db", "c"}))
}

func TestGetContainer(t *testing.T) {
	cmd := &cobra.Command{}
	_, err := root.GetContainer(cmd)
	assert.ErrorIs(t, err, root.ErrNoContainer)

	cfg := &config.Config{Categories: models.DefaultCategories}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	c, err := container.NewContainerWithLogger(cfg, nil)
	require.NoError(t, err)

	cmd.SetContext(root.WithContainer(context.Background(), c))
	got, err := root.GetContainer(cmd)
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestPersistentPreRun_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	cmd := root.NewCmd()
	var seen *container.Container
	sub := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			seen, err = root.GetContainer(cmd)
			return err
		},
	}
	cmd.AddCommand(sub)
	cmd.SetArgs([]string{"probe", "--db", "custom.db", "--log-level", "debug"})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, seen)
	assert.Equal(t, "custom.db", seen.GetConfig().Database.Path)
	assert.Equal(t, "debug", seen.GetConfig().Log.Level)
}
