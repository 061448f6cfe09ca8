package locale

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makeitchaccha/fluent-locale-checker/checker/resource"
	"github.com/makeitchaccha/fluent-locale-checker/checker/resource/fluent"
	"github.com/makeitchaccha/fluent-locale-checker/checker/resource/tomlres"
)

func newTestFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(name), []byte(content), 0o644))
	}
	return fs
}

func newTestRegistry() *resource.Registry {
	return resource.NewRegistry(fluent.New(), tomlres.New())
}

func TestDiscover(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"locales/fr/main.ftl":    "hello = Bonjour",
		"locales/en-US/main.ftl": "hello = Hello",
		"locales/de/main.ftl":    "hello = Hallo",
		"locales/README.md":      "not a locale",
	})

	locales, err := Discover(fs, "locales")
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en-US", "fr"}, locales)

	_, err = Discover(fs, "missing")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"locales/en-US/main.ftl":        "hello = Hello\nbye = Bye\n",
		"locales/en-US/bot.toml":        "[generic]\nguild = \"guild\"\n",
		"locales/en-US/broken.ftl":      "hello = { $name\n",
		"locales/en-US/notes.txt":       "ignored",
		"locales/en-US/menus/extra.ftl": "menu = Menu\n",
	})
	loader := NewLoader(fs, "locales", newTestRegistry())

	loc, err := loader.Load(context.Background(), "en-US")
	require.NoError(t, err)

	assert.Equal(t, "en-US", loc.Name)
	assert.Equal(t, []string{"bot.toml", "broken.ftl", "main.ftl"}, loc.Files())
	require.Contains(t, loc.Resources, "main.ftl")
	assert.Equal(t, []string{"hello", "bye"}, loc.Resources["main.ftl"].Keys())
	assert.Equal(t, []string{"generic.guild"}, loc.Resources["bot.toml"].Keys())

	require.Contains(t, loc.Errors, "broken.ftl")
	assert.ErrorIs(t, loc.Errors["broken.ftl"], resource.ErrParse)
	assert.True(t, loc.Has("broken.ftl"))
	assert.False(t, loc.Has("notes.txt"))
}

func TestLoadRecursive(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"locales/en-US/main.ftl":          "hello = Hello\n",
		"locales/en-US/menus/context.ftl": "copy = Copy\n",
		"locales/en-US/menus/deep/x.ftl":  "x = X\n",
	})
	loader := NewLoader(fs, "locales", newTestRegistry(), WithRecursive(true))

	loc, err := loader.Load(context.Background(), "en-US")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.ftl", "menus/context.ftl", "menus/deep/x.ftl"}, loc.Files())
	assert.Empty(t, loc.Errors)
}

func TestLoadMissingDirectory(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"locales/fr/main.ftl": "hello = Bonjour\n",
	})
	loader := NewLoader(fs, "locales", newTestRegistry())

	_, err := loader.Load(context.Background(), "en-US")
	require.ErrorIs(t, err, ErrLocaleDirectoryMissing)

	var missing *DirectoryMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "en-US", missing.Locale)
	assert.Equal(t, filepath.Join("locales", "en-US"), missing.Path)
}

func TestLoadManyFilesWithSmallPool(t *testing.T) {
	files := make(map[string]string)
	want := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("file%02d.ftl", i)
		files["locales/en-US/"+name] = fmt.Sprintf("entry%d = Value { $v%d }\n", i, i)
		want = append(want, name)
	}
	loader := NewLoader(newTestFs(t, files), "locales", newTestRegistry(), WithConcurrency(3))

	loc, err := loader.Load(context.Background(), "en-US")
	require.NoError(t, err)
	assert.Equal(t, want, loc.Files())
	for i, name := range want {
		entry, ok := loc.Resources[name].Entry(fmt.Sprintf("entry%d", i))
		require.True(t, ok, name)
		assert.Equal(t, []string{fmt.Sprintf("v%d", i)}, entry.Value.Variables())
	}
}

func TestLoadCancelled(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"locales/en-US/main.ftl": "hello = Hello\n",
	})
	loader := NewLoader(fs, "locales", newTestRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, "en-US")
	assert.ErrorIs(t, err, context.Canceled)
}
