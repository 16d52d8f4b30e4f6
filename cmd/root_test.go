package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/supplier-cli/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"serve", "import", "analyze", "analyses", "template", "migrate"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "supplier-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestImportCommand_Flags(t *testing.T) {
	flag := importCmd.Flags().Lookup("file")
	require.NotNil(t, flag, "import command should have --file flag")

	flag = importCmd.Flags().Lookup("analysis")
	require.NotNil(t, flag, "import command should have --analysis flag")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestTemplateCommand_Output(t *testing.T) {
	var buf bytes.Buffer
	templateCmd.SetOut(&buf)
	require.NoError(t, templateCmd.RunE(templateCmd, nil))

	out := buf.String()
	assert.Contains(t, out, "fournisseur,produit,quantite,qualite,delai,prix,date_livraison")
	assert.Contains(t, out, "Acme Corp")
}

func TestInitStore_SQLite(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })
	cfg = &config.Config{Store: config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
	}}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, st.Ping(context.Background()))
}

func TestInitStore_UnknownDriver(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })
	cfg = &config.Config{Store: config.StoreConfig{Driver: "oracle"}}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}
