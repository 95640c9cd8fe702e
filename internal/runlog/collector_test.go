package runlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsEntries(t *testing.T) {
	c := NewCollector(slog.LevelInfo)
	logger := slog.New(c).With(slog.String("component", "extractor"))

	logger.Debug("hidden")
	logger.Info("rows filtered", slog.Int("kept", 2), slog.Group("sheet", slog.String("name", "5G Info")))
	logger.Warn("no match")

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "extractor", entries[0].Component)
	assert.Equal(t, "rows filtered", entries[0].Message)
	assert.Equal(t, int64(2), entries[0].Attrs["kept"])
	assert.Equal(t, "5G Info", entries[0].Attrs["sheet.name"])
	assert.Nil(t, entries[1].Attrs)

	assert.Len(t, c.Filter(slog.LevelWarn), 1)
	assert.True(t, c.Contains("filtered"))
	assert.False(t, c.Contains("hidden"))
}

func TestCollector_DerivedHandlersShareStore(t *testing.T) {
	c := NewCollector(nil)
	slog.New(c.WithGroup("g")).Info("a", slog.String("k", "v"))
	slog.New(c.WithAttrs([]slog.Attr{slog.String("run", "1")})).Info("b")

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "v", entries[0].Attrs["g.k"])
	assert.Equal(t, "1", entries[1].Attrs["run"])
}

func TestCollector_Subscribe(t *testing.T) {
	c := NewCollector(nil)
	var got []string
	c.Subscribe(func(e Entry) { got = append(got, e.Message) })

	logger := slog.New(c)
	logger.Info("one")
	logger.Error("two")

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestEntryLine(t *testing.T) {
	e := Entry{
		Time:      time.Date(2025, 1, 2, 9, 4, 5, 0, time.UTC),
		Level:     "WARN",
		Component: "mapper",
		Message:   "placeholders without value",
		Attrs:     map[string]any{"variable": "N066_1", "count": 3},
	}
	assert.Equal(t, "[09:04:05] WARN [mapper] placeholders without value count=3 variable=N066_1", e.Line())
}

func TestTee(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollector(slog.LevelWarn)
	text := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(Tee(text, c, nil)).With(slog.String("component", "grouper"))
	logger.Info("info only to text")
	logger.WarnContext(context.Background(), "to both")

	assert.Contains(t, buf.String(), "info only to text")
	assert.Contains(t, buf.String(), "to both")
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "grouper", c.Entries()[0].Component)
}
