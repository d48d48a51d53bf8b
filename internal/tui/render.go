package tui

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"tokenscope/internal/dashboard"
	"tokenscope/internal/token"
)

const noResults = "No tokens found matching your criteria"

type column struct {
	title    string
	width    int
	sortable bool
	key      token.SortKey
}

const (
	colCursor = iota
	colToken
	colStatus
	colCap
	colVolume
	colChart
	colChange
	colPrice
	colInfo
)

var columns = []column{
	colCursor: {title: "", width: 2},
	colToken:  {title: "Token", width: 22},
	colStatus: {title: "Status", width: 16},
	colCap:    {title: "Market Cap", width: 13, sortable: true, key: token.SortMarketCap},
	colVolume: {title: "Volume (24h)", width: 15, sortable: true, key: token.SortVolume},
	colChart:  {title: "Chart", width: 9},
	colChange: {title: "Change (24h)", width: 15, sortable: true, key: token.SortChange},
	colPrice:  {title: "Price", width: 12, sortable: true, key: token.SortPrice},
	colInfo:   {title: "Info", width: 4},
}

// colX returns the first cell of column i.
func colX(i int) int {
	x := 0
	for _, c := range columns[:i] {
		x += c.width
	}
	return x
}

func tableWidth() int { return colX(len(columns)) }

type hitKind int

const (
	hitSearch hitKind = iota + 1
	hitFilter
	hitHeader
	hitRow
	hitInfo
	hitPopover
)

// hit is a clickable screen rectangle, [x0,x1) × [y0,y1).
type hit struct {
	kind    hitKind
	x0, x1  int
	y0, y1  int
	id      string
	index   int
	sortKey token.SortKey
}

type hitMap []hit

// at returns the most recently added region containing (x, y).
func (h hitMap) at(x, y int) (hit, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		r := h[i]
		if x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1 {
			return r, true
		}
	}
	return hit{}, false
}

// View renders the dashboard, or the detail modal over a blank screen.
func (m Model) View() string {
	if m.modalID != "" {
		if box, ok := m.renderModal(); ok {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
	}
	lines, _ := m.render()
	return strings.Join(lines, "\n") + "\n" + m.help.View(keys)
}

// render lays out every line of the main screen together with its click
// regions, so drawing and hit testing cannot disagree.
func (m Model) render() ([]string, hitMap) {
	var lines []string
	var hits hitMap

	lines = append(lines, m.renderTitle())

	searchLine := m.search.View()
	hits = append(hits, hit{kind: hitSearch, x0: 0, x1: max(lipgloss.Width(searchLine), 1), y0: len(lines), y1: len(lines) + 1})
	lines = append(lines, searchLine)

	filterLine, filterHits := m.renderFilters(len(lines))
	hits = append(hits, filterHits...)
	lines = append(lines, filterLine, "")

	y := len(lines)
	for i, c := range columns {
		if c.sortable {
			hits = append(hits, hit{kind: hitHeader, x0: colX(i), x1: colX(i) + c.width, y0: y, y1: y + 1, sortKey: c.key})
		}
	}
	lines = append(lines, m.renderHeader())

	switch rows := m.board.Derive(); {
	case m.board.Loading():
		for i := 0; i < m.skeletonRows; i++ {
			lines = append(lines, renderSkeletonRow())
		}
	case len(rows) == 0:
		lines = append(lines, "", "  "+emptyStyle.Render(noResults), "")
	default:
		now := m.now()
		for _, r := range rows {
			y := len(lines)
			hits = append(hits,
				hit{kind: hitRow, x0: 0, x1: tableWidth(), y0: y, y1: y + 1, id: r.ID},
				hit{kind: hitInfo, x0: colX(colInfo), x1: colX(colInfo) + columns[colInfo].width, y0: y, y1: y + 1, id: r.ID},
			)
			lines = append(lines, m.renderRow(r, now))

			if r.ID == m.popoverID {
				box := renderPopover(r)
				indent := max(0, colX(colInfo)+columns[colInfo].width-lipgloss.Width(box))
				boxLines := strings.Split(box, "\n")
				hits = append(hits, hit{
					kind: hitPopover,
					x0:   indent, x1: indent + lipgloss.Width(box),
					y0: len(lines), y1: len(lines) + len(boxLines),
					id: r.ID,
				})
				pad := strings.Repeat(" ", indent)
				for _, l := range boxLines {
					lines = append(lines, pad+l)
				}
			}
		}
	}

	lines = append(lines, "", m.renderFooter(), m.renderStatus())
	return lines, hits
}

func (m Model) renderTitle() string {
	var text string
	if m.board.Loading() {
		text = fmt.Sprintf(" %s    %s loading tokens...", m.title, m.spinner.View())
	} else {
		spec := m.board.Sort()
		text = fmt.Sprintf(" %s    %d shown    sort: %s %s    filter: %s",
			m.title,
			len(m.board.Derive()),
			spec.Key,
			arrow(spec.Direction),
			m.board.Filter(),
		)
		if m.status != "" {
			text += "    " + m.status
		}
	}
	return titleStyle.Render(padOrTrunc(text, m.width))
}

func (m Model) renderFilters(y int) (string, hitMap) {
	var b strings.Builder
	var hits hitMap
	x := 0
	for i, f := range token.Filters() {
		style := filterStyle
		if f == m.board.Filter() {
			style = filterActiveStyle
		}
		btn := style.Render(fmt.Sprintf("%d %s", i, f))
		w := lipgloss.Width(btn)
		hits = append(hits, hit{kind: hitFilter, x0: x, x1: x + w, y0: y, y1: y + 1, index: i})
		b.WriteString(btn)
		b.WriteString(" ")
		x += w + 1
	}
	return b.String(), hits
}

func arrow(d token.SortDirection) string {
	if d == token.Ascending {
		return "▲"
	}
	return "▼"
}

func (m Model) renderHeader() string {
	spec := m.board.Sort()
	var b strings.Builder
	for _, c := range columns {
		title := c.title
		style := colHeaderStyle
		if c.sortable && c.key == spec.Key {
			title += " " + arrow(spec.Direction)
			style = activeColStyle
		}
		b.WriteString(cell(style, title, c.width))
	}
	return b.String()
}

func renderSkeletonRow() string {
	var b strings.Builder
	for i, c := range columns {
		if i == colCursor {
			b.WriteString(strings.Repeat(" ", c.width))
			continue
		}
		n := max(1, c.width-3)
		b.WriteString(cell(skeletonStyle, strings.Repeat("░", n), c.width))
	}
	return b.String()
}

func (m Model) renderRow(r token.Record, now time.Time) string {
	hl := r.ID == m.selectedID
	var b strings.Builder

	if hl {
		b.WriteString(cell(cursorStyle, "▸", columns[colCursor].width))
	} else {
		b.WriteString(strings.Repeat(" ", columns[colCursor].width))
	}

	initial := initialStyle.Render(" " + initialOf(r.Name) + " ")
	name := hlStyle(nameStyle, hl).Render(r.Name)
	b.WriteString(padCell(initial+" "+name+" "+symbolStyle.Render(r.Symbol), columns[colToken].width))

	b.WriteString(padCell(badgeStyle(r.Category).Render(r.Category.String()), columns[colStatus].width))
	b.WriteString(cell(priceStyle, dashboard.FormatCurrency(r.MarketCap), columns[colCap].width))
	b.WriteString(cell(priceStyle, dashboard.FormatCurrency(r.Volume24h), columns[colVolume].width))
	b.WriteString(cell(changeStyle(r.Change24h), dashboard.Sparkline(r.History), columns[colChart].width))

	changeMove := m.flashes.Active(r.ID, dashboard.FieldChange, now)
	b.WriteString(cell(flashStyle(changeStyle(r.Change24h), changeMove), dashboard.FormatChange(r.Change24h), columns[colChange].width))

	priceMove := m.flashes.Active(r.ID, dashboard.FieldPrice, now)
	b.WriteString(cell(flashStyle(priceStyle.Bold(true), priceMove), dashboard.FormatCurrency(r.Price), columns[colPrice].width))

	b.WriteString(cell(infoStyle, "ⓘ", columns[colInfo].width))
	return b.String()
}

func renderPopover(r token.Record) string {
	text := fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Liquidity"), dashboard.FormatCurrency(r.Liquidity),
		labelStyle.Render("Holders"), dashboard.FormatNumber(float64(r.Holders)),
		labelStyle.Render("Transactions"), dashboard.FormatNumber(float64(r.Transactions24h)),
	)
	return popoverStyle.Render(text)
}

func (m Model) renderFooter() string {
	t := m.board.Totals()
	text := fmt.Sprintf(" Total tokens: %d    Total market cap: %s    Total volume (24h): %s",
		t.Count,
		dashboard.FormatCurrency(t.MarketCap),
		dashboard.FormatCurrency(t.Volume24h),
	)
	return footerStyle.Render(padOrTrunc(text, m.width))
}

func (m Model) renderStatus() string {
	switch {
	case m.feedErr != nil:
		return errorStyle.Render(" feed error: " + m.feedErr.Error())
	case m.search.Focused():
		return dimStyle.Render(" typing filters as you go; enter or esc to finish")
	case m.popoverID == "" && m.selectedID != "" && !m.board.Loading():
		return statusStyle.Render(" ⓘ More information (i)")
	default:
		return ""
	}
}

// renderModal draws the detail dialog for the open record.
func (m Model) renderModal() (string, bool) {
	r, ok := m.board.Record(m.modalID)
	if !ok {
		return "", false
	}

	var b strings.Builder
	initial := initialStyle.Render(" " + initialOf(r.Name) + " ")
	b.WriteString(initial + " " + nameStyle.Render(r.Name) + " " + symbolStyle.Render(r.Symbol) + "  " + badgeStyle(r.Category).Render(r.Category.String()))
	b.WriteString("\n\n")

	field := func(label, value string, style lipgloss.Style) string {
		return cell(labelStyle, label, 16) + cell(style, value, 14)
	}
	b.WriteString(field("Price", dashboard.FormatPrice(r.Price), priceStyle.Bold(true)))
	b.WriteString(field("Change (24h)", dashboard.FormatChange(r.Change24h)+" (24h)", changeStyle(r.Change24h)))
	b.WriteString("\n")
	b.WriteString(field("Market Cap", dashboard.FormatCurrency(r.MarketCap), priceStyle))
	b.WriteString(field("Volume (24h)", dashboard.FormatCurrency(r.Volume24h), priceStyle))
	b.WriteString("\n")
	b.WriteString(field("Liquidity", dashboard.FormatCurrency(r.Liquidity), priceStyle))
	b.WriteString(field("Holders", dashboard.FormatInt(r.Holders), priceStyle))
	b.WriteString("\n")
	b.WriteString(field("Transactions", dashboard.FormatInt(r.Transactions24h), priceStyle))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Price history"))
	b.WriteString("\n")
	for _, l := range historyBars(r.History, 4) {
		b.WriteString(barStyle.Render(l))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("esc close"))

	return modalStyle.Render(b.String()), true
}

// modalBounds returns where View places the modal: x, y, width, height.
func (m Model) modalBounds() (int, int, int, int) {
	box, ok := m.renderModal()
	if !ok {
		return 0, 0, 0, 0
	}
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	return max(0, (m.width-w)/2), max(0, (m.height-h)/2), w, h
}

func initialOf(name string) string {
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(r)
}

var eighths = []rune(" ▁▂▃▄▅▆▇█")

// historyBars draws one column per sample, rows tall, each scaled to the
// largest sample.
func historyBars(history []float64, rows int) []string {
	heights := dashboard.BarHeights(history)
	out := make([]string, rows)
	for r := 0; r < rows; r++ {
		level := rows - 1 - r
		var b strings.Builder
		for _, h := range heights {
			total := int(math.Round(h * float64(rows*8)))
			fill := max(0, min(8, total-level*8))
			b.WriteString(strings.Repeat(string(eighths[fill]), 3))
			b.WriteString(" ")
		}
		out[r] = b.String()
	}
	return out
}

// cell renders plain text in style, padded or truncated to width.
func cell(style lipgloss.Style, text string, width int) string {
	text = truncate(text, width-1)
	return style.Render(text) + strings.Repeat(" ", max(0, width-lipgloss.Width(text)))
}

// padCell pads already-styled content to width.
func padCell(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 && lipgloss.Width(string(rs)) > width {
		rs = rs[:len(rs)-1]
	}
	return string(rs)
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}
