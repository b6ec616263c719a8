package inspect

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/vibcheck/models"
	"golang.org/x/net/html"
)

// FromHTML builds a Record from a saved DOM snapshot.
//
// Selector counts and existence checks match the live inspector. A static
// document has no script globals, so SystemLoaded and AgentAPILoaded are
// always false, and no computed styles, so AnimationName is "none".
func FromHTML(r io.Reader) (models.Record, error) {
	root, err := html.Parse(r)
	if err != nil {
		return models.Record{}, models.NewAuditError(
			models.ErrCodeInvalidInput,
			"failed to parse DOM snapshot",
			err,
		)
	}
	doc := goquery.NewDocumentFromNode(root)

	fields := make(map[string]any, len(Globals)+len(Counts)+len(Exists)+1)
	for _, q := range Globals {
		fields[q.Field] = false
	}
	for _, q := range Counts {
		fields[q.Field] = doc.Find(q.Selector).Length()
	}
	for _, q := range Exists {
		fields[q.Field] = doc.Find(q.Selector).Length() > 0
	}
	fields[animationField] = "none"

	raw, err := json.Marshal(fields)
	if err != nil {
		return models.Record{}, fmt.Errorf("inspect: encode snapshot record: %w", err)
	}
	return decodeRecord(raw)
}
