package shared

import "github.com/charmbracelet/lipgloss"

// RenderTwoColumnLayout renders content in two columns with 60-40 width split.
// Left column receives ~60% of width, right column receives ~40%.
func RenderTwoColumnLayout(leftContent, rightContent string, width int) string {
	leftWidth := int(float64(width) * 0.6) //nolint:mnd // 60-40 split
	rightWidth := width - leftWidth

	leftStyle := lipgloss.NewStyle().Width(leftWidth)
	rightStyle := lipgloss.NewStyle().Width(rightWidth)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(leftContent),
		rightStyle.Render(rightContent),
	)
}

// RenderWidgetBox renders content in a titled box with borders.
// Width accounts for borders and padding.
func RenderWidgetBox(title, content string, width int) string {
	const widthOverhead = 4 // borders (2) and padding (2)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor())
	boxStyle := BoxStyle().Width(max(width-widthOverhead, 1))

	return boxStyle.Render(titleStyle.Render(title) + "\n" + content)
}
