package table

import (
	"github.com/imgajeed76/sheetview/internal/ui/styles"
)

// scrollbar renders a one-column scrollbar of height lines from the
// window spacers. top and bottom are the scroll units above and below
// the rendered rows and shown is the scroll units on screen.
func scrollbar(height, top, shown, bottom int) []string {
	if height <= 0 {
		return nil
	}
	lines := make([]string, height)

	total := top + shown + bottom
	if total <= shown || total <= 0 {
		for i := range lines {
			lines[i] = styles.Mute("┃")
		}
		return lines
	}

	thumb := max(1, height*shown/total)
	track := height - thumb
	offset := 0
	if scrollable := top + bottom; scrollable > 0 && track > 0 {
		offset = top * track / scrollable
	}
	offset = min(offset, height-thumb)

	for i := range lines {
		if i >= offset && i < offset+thumb {
			lines[i] = styles.Render(styles.FilterStyle, "┃")
		} else {
			lines[i] = styles.Mute("│")
		}
	}
	return lines
}
