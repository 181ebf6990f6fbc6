package fmc

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/sells-group/yardops-cli/internal/config"
	"github.com/sells-group/yardops-cli/internal/fetcher"
	"github.com/sells-group/yardops-cli/internal/model"
)

// PortalProvider scrapes FMC execution views from the portal. Each view
// renders the dataset as HTML tables; every table with the expected
// headers contributes rows.
type PortalProvider struct {
	cfg config.FMCConfig
	views map[string]string
}

// NewPortalProvider creates a provider backed by the portal's FMC views.
func NewPortalProvider(cfg config.FMCConfig, views map[string]string) *PortalProvider {
	return &PortalProvider{cfg: cfg, views: views}
}

// Records fetches and parses the FMC view for a site. A site without a
// configured view yields no rows.
func (p *PortalProvider) Records(ctx context.Context, site string) ([]model.FMCRecord, error) {
	view, ok := p.views[site]
	if !ok {
		zap.L().Info("fmc: no view configured for site", zap.String("site", site))
		return nil, nil
	}

	client, err := fetcher.NewClient(fetcher.Options{
		Timeout: time.Duration(p.cfg.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if p.cfg.CookieFile != "" {
		base, err := url.Parse(p.cfg.BaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "fmc: parse base url")
		}
		cookies, err := loadCookieFile(p.cfg.CookieFile)
		if err != nil {
			return nil, eris.Wrap(err, "fmc: load cookie file")
		}
		client.SetCookies(base, cookies)
	}

	u := fmt.Sprintf("%s/fmc/excel/execution/%s?view=vrs", p.cfg.BaseURL, view)
	body, err := client.GetString(ctx, u, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fmc: fetch view for %s", site)
	}

	records := parseTables(body)
	zap.L().Info("fmc: loaded records",
		zap.String("site", site),
		zap.Int("count", len(records)),
	)
	return records, nil
}

// parseTables extracts FMC rows from every <table> in the document.
func parseTables(body string) []model.FMCRecord {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		zap.L().Warn("fmc: html parse failed", zap.Error(err))
		return nil
	}

	var records []model.FMCRecord
	for _, table := range findElements(doc, "table") {
		header, rows := tableCells(table)
		if len(header) == 0 {
			continue
		}
		records = append(records, recordsFromTable(header, rows)...)
	}
	return records
}

// tableCells splits a table node into its header texts and row texts. The
// first <tr> is assumed to be the header row.
func tableCells(table *html.Node) ([]string, [][]string) {
	var header []string
	for _, th := range findElements(table, "th") {
		header = append(header, nodeText(th))
	}

	trs := findElements(table, "tr")
	if len(trs) < 2 {
		return header, nil
	}

	var rows [][]string
	for _, tr := range trs[1:] {
		var cells []string
		for _, td := range findElements(tr, "td") {
			cells = append(cells, nodeText(td))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return header, rows
}

// findElements collects descendant elements with the given tag, in
// document order. The root itself is not considered.
func findElements(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag {
			out = append(out, child)
			continue
		}
		out = append(out, findElements(child, tag)...)
	}
	return out
}

// nodeText concatenates all text under a node, trimmed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
