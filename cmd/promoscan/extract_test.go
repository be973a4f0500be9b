package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/promoscan/pkg/promoscan"
)

const sampleBrochure = `Седмична брошура 02.10 - 08.10
Кашкавал Витоша 400г
7.50 лв
-24% вместо 9.90 лв
Акция Сирене краве 1кг 9.99 лв
Хляб Добруджа 500г 1.29 лв
стр. 3`

func writeBrochure(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeResults(t *testing.T, out string) []promoscan.Result {
	t.Helper()
	var results []promoscan.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	return results
}

func productNames(r promoscan.Result) []string {
	names := make([]string, len(r.Products))
	for i, p := range r.Products {
		names[i] = p.Name
	}
	return names
}

func TestExtractCommand_NoSave(t *testing.T) {
	dir := setupEnv(t)
	path := writeBrochure(t, dir, "billa-w40.txt", sampleBrochure)

	out, err := execute(t, "extract", path)
	require.NoError(t, err)

	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "billa", results[0].Retailer)
	assert.Contains(t, productNames(results[0]), "Хляб Добруджа 500г")
	assert.Contains(t, productNames(results[0]), "Кашкавал Витоша 400г")

	// nothing recorded, no database created
	assert.NoFileExists(t, filepath.Join(dir, "runs.db"))
}

func TestExtractCommand_SaveAndInspect(t *testing.T) {
	dir := setupEnv(t)
	path := writeBrochure(t, dir, "billa-w40.txt", sampleBrochure)

	out, err := execute(t, "extract", "--save", "--retailer", "Billa BG", path)
	require.NoError(t, err)
	results := decodeResults(t, out)
	require.Len(t, results, 1)
	runID := results[0].RunID
	require.NotEmpty(t, runID)

	out, err = execute(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "Billa BG")

	out, err = execute(t, "runs", "show", runID)
	require.NoError(t, err)
	assert.Contains(t, out, `"product_name": "Хляб Добруджа 500г"`)
	assert.Contains(t, out, `"product_category": "Хляб и тестени"`)

	out, err = execute(t, "runs", "products", "Млечни продукти")
	require.NoError(t, err)
	assert.Contains(t, out, "Кашкавал Витоша 400г")

	_, err = execute(t, "runs", "show", "missing")
	assert.Error(t, err)
}

func TestExtractCommand_Blacklist(t *testing.T) {
	dir := setupEnv(t)
	path := writeBrochure(t, dir, "billa.txt", sampleBrochure)

	out, err := execute(t, "extract", path)
	require.NoError(t, err)
	assert.Contains(t, productNames(decodeResults(t, out)[0]), "Акция Сирене краве 1кг")

	_, err = execute(t, "blacklist", "add", "Акция")
	require.NoError(t, err)

	out, err = execute(t, "blacklist", "list")
	require.NoError(t, err)
	assert.Equal(t, "акция\n", out)

	out, err = execute(t, "blacklist", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "акция\n")
	assert.Contains(t, out, "вместо\n")

	out, err = execute(t, "extract", path)
	require.NoError(t, err)
	assert.NotContains(t, productNames(decodeResults(t, out)[0]), "Акция Сирене краве 1кг")

	_, err = execute(t, "blacklist", "remove", "акция")
	require.NoError(t, err)
	out, err = execute(t, "blacklist", "list")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestExtractCommand_SkipsBadFiles(t *testing.T) {
	dir := setupEnv(t)
	good := writeBrochure(t, dir, "good.txt", sampleBrochure)
	unsupported := writeBrochure(t, dir, "scan.pdf", "%PDF")

	out, err := execute(t, "extract", unsupported, filepath.Join(dir, "missing.txt"), good)
	require.NoError(t, err)
	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, good, results[0].Source)
}

func TestExtractCommand_NoUsableInput(t *testing.T) {
	dir := setupEnv(t)

	_, err := execute(t, "extract", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestExtractCommand_Stdin(t *testing.T) {
	setupEnv(t)
	rootCmd.SetIn(strings.NewReader("Хляб Добруджа 500г 1.29 лв\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, err := execute(t, "extract", "-")
	require.NoError(t, err)
	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "stdin", results[0].Source)
	assert.Equal(t, []string{"Хляб Добруджа 500г"}, productNames(results[0]))
}
