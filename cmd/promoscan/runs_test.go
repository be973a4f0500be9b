package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 10, 2, 8, 30, 0, 0, time.Local)
	runs := []store.RunSummary{
		{ID: "01JA0000000000000000000001", Source: "billa-w40.txt", Retailer: "billa", CreatedAt: now, ProductCount: 42},
		{ID: "01JA0000000000000000000002", Source: "scan.txt", CreatedAt: now.Add(-time.Hour)},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "PRODUCTS")
	assert.Contains(t, output, "01JA0000000000000000000001")
	assert.Contains(t, output, "billa-w40.txt")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "2025-10-02 08:30")
	assert.Contains(t, output, " - ")
}
