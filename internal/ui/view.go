package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/tourist/internal/coord"
)

const noImagesText = "This pin has no images."

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	if a.view == viewAlbum {
		b.WriteString(a.renderAlbum())
	} else {
		b.WriteString(a.renderPins())
	}

	// Pad so the bars sit at the bottom
	used := lipgloss.Height(b.String())
	if gap := a.height - used - 2; gap > 0 {
		b.WriteString(strings.Repeat("\n", gap))
	}

	switch {
	case a.adding:
		b.WriteString(InputBar.Width(a.width).Render(a.input.View()))
	case a.err != nil:
		b.WriteString(ErrorStyle.Width(a.width).Render("Error: " + a.err.Error() + " (press any key to dismiss)"))
	case a.notice != "":
		b.WriteString(InfoStyle.Width(a.width).Render(a.notice))
	}
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a App) renderPins() string {
	var b strings.Builder
	b.WriteString(Header.Render(fmt.Sprintf("Pins (%d)", len(a.pins))))
	b.WriteString("\n")

	if len(a.pins) == 0 {
		b.WriteString(EmptyState.Render("No pins yet. Press a to drop one."))
		return b.String()
	}

	for i, p := range a.pins {
		line := fmt.Sprintf("%-24s %s", p.Coordinates.String(), Subtle.Render("added "+humanize.Time(p.CreatedAt)))
		if i == a.pinCursor {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderAlbum() string {
	var b strings.Builder
	focus := a.region.Focus(a.album.at)
	title := fmt.Sprintf("Album %s", a.album.at.String())
	b.WriteString(Header.Render(title) + Subtle.Render(fmt.Sprintf("span %.3f° x %.3f°", focus.LatitudeDelta, focus.LongitudeDelta)))
	b.WriteString("\n")

	if a.loading && len(a.album.rows) == 0 {
		b.WriteString(EmptyState.Render(a.spinner.View() + " Searching for photos..."))
		return b.String()
	}
	if a.album.empty || len(a.album.rows) == 0 {
		b.WriteString(EmptyState.Render(noImagesText))
		return b.String()
	}

	start, end := a.visibleRange()
	for i := start; i < end; i++ {
		r := a.album.rows[i]
		mark := "[ ]"
		if a.album.selected[r.ID] {
			mark = "[x]"
		}
		t := r.Title
		if t == "" {
			t = "Untitled"
		}
		line := fmt.Sprintf("%s %s %s %s", mark, a.badge(r), t, Subtle.Render(rowDetail(r)))

		switch {
		case i == a.album.cursor:
			b.WriteString(SelectedItem.Render(line))
		case a.album.selected[r.ID]:
			b.WriteString(MarkedItem.Render(line))
		default:
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) badge(r photoRow) string {
	switch r.State {
	case coord.Hydrated:
		return BadgeHydrated.Render("●")
	case coord.Hydrating:
		return BadgeLoading.Render(a.spinner.View())
	case coord.HydrationFailed:
		return BadgeFailed.Render("✗")
	default:
		return BadgeIdle.Render("○")
	}
}

func rowDetail(r photoRow) string {
	switch r.State {
	case coord.Hydrated:
		return humanize.Bytes(uint64(r.Size))
	case coord.HydrationFailed:
		return "failed, r to retry"
	default:
		return r.ID
	}
}

// renderStatusBar renders position info on the left and key hints on the right.
func (a App) renderStatusBar() string {
	var position string
	switch {
	case a.loading:
		position = " " + a.spinner.View() + " Loading... "
	case a.view == viewAlbum:
		position = fmt.Sprintf(" %d/%d ", a.album.cursor+1, len(a.album.rows))
		if n := len(a.album.selected); n > 0 {
			position += fmt.Sprintf("(%d selected) ", n)
		}
	default:
		position = fmt.Sprintf(" %d/%d ", a.pinCursor+1, len(a.pins))
	}

	var keys []string
	if a.view == viewAlbum {
		action := ":new collection"
		if len(a.album.selected) > 0 {
			action = ":remove selected"
		}
		keys = []string{
			StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
			StatusBarKey.Render("space") + StatusBarText.Render(":select"),
			StatusBarKey.Render("n") + StatusBarText.Render(action),
			StatusBarKey.Render("r") + StatusBarText.Render(":retry"),
			StatusBarKey.Render("esc") + StatusBarText.Render(":back"),
			StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
		}
	} else {
		keys = []string{
			StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
			StatusBarKey.Render("Enter") + StatusBarText.Render(":open"),
			StatusBarKey.Render("a") + StatusBarText.Render(":add"),
			StatusBarKey.Render("d") + StatusBarText.Render(":delete"),
			StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
		}
	}
	keyHints := strings.Join(keys, " ")

	padding := a.width - lipgloss.Width(position) - lipgloss.Width(keyHints)
	if padding < 0 {
		padding = 0
	}

	bar := position + strings.Repeat(" ", padding) + keyHints
	return StatusBar.Width(a.width).Render(bar)
}
