package listen

import (
	"bytes"
	"encoding/json"
	"testing"

	cmdpkg "github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/storefront/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(source notifications.Source, isNew bool, item entity.Record) notifications.Event {
	return notifications.Event{Source: source, New: isNew, Item: item}
}

func TestPrinter_Text(t *testing.T) {
	var out bytes.Buffer
	p, err := newEventPrinter(&out, common.TEXT, "", false)
	require.NoError(t, err)

	require.NoError(t, p.Print(event(notifications.SourcePush, true,
		entity.Record{"id": float64(12), "title": "New order", "read": false})))
	require.NoError(t, p.Print(event(notifications.SourceFetch, false,
		entity.Record{"id": float64(3), "message": "Payout sent", "read": true})))

	assert.Equal(t, "* [push] #12 New order (unread)\n  [fetch] #3 Payout sent (read)\n", out.String())
}

func TestPrinter_NewOnlySkipsInitialFetch(t *testing.T) {
	var out bytes.Buffer
	p, err := newEventPrinter(&out, common.TEXT, "", true)
	require.NoError(t, err)

	require.NoError(t, p.Print(event(notifications.SourceFetch, false, entity.Record{"id": float64(1)})))
	assert.Empty(t, out.String())

	require.NoError(t, p.Print(event(notifications.SourcePoll, true, entity.Record{"id": float64(2), "title": "Hi"})))
	assert.Contains(t, out.String(), "#2 Hi")
}

func TestPrinter_Template(t *testing.T) {
	var out bytes.Buffer
	p, err := newEventPrinter(&out, common.TEXT, `{{ .source }} {{ .item.title | upper }}{{ if .new }} NEW{{ end }}`, false)
	require.NoError(t, err)

	require.NoError(t, p.Print(event(notifications.SourcePoll, true, entity.Record{"id": float64(5), "title": "restock"})))
	assert.Equal(t, "poll RESTOCK NEW\n", out.String())
}

func TestPrinter_InvalidTemplate(t *testing.T) {
	_, err := newEventPrinter(&bytes.Buffer{}, common.TEXT, "{{ .item", false)
	var cfgErr *cmdpkg.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestPrinter_JSONLines(t *testing.T) {
	var out bytes.Buffer
	p, err := newEventPrinter(&out, common.JSON, "", false)
	require.NoError(t, err)

	require.NoError(t, p.Print(event(notifications.SourceLocal, false, entity.Record{"id": float64(5), "read": true})))

	var line map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &line))
	assert.Equal(t, "local", line["source"])
	assert.Equal(t, map[string]any{"id": float64(5), "read": true}, line["item"])
}
