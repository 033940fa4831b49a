package sshcmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/turn-arena/internal/board"
	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
)

// pieceStyles maps in-board sides to lipgloss styles.
var pieceStyles = map[board.Player]lipgloss.Style{
	board.Empty:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	board.Cross:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
	board.Circle: lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
	board.Black:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	board.White:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	boardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// RenderBoard draws the grid with row numbers on the left and column
// letters underneath.
func RenderBoard(b board.Board) string {
	dim := b.Dim()
	positions := b.Positions()

	var sb strings.Builder
	for row := 0; row < dim; row++ {
		if row > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%2d ", dim-row)))
		for col := 0; col < dim; col++ {
			p := positions[row*dim+col].Player
			sb.WriteString(" ")
			sb.WriteString(pieceStyles[p].Render(p.Symbol()))
		}
	}
	sb.WriteString("\n   ")
	for col := 0; col < dim; col++ {
		sb.WriteString(labelStyle.Render(" " + string(rune('a'+col))))
	}
	return boardStyle.Render(sb.String())
}

// RenderMatch draws a match header, the board and a status line from the
// point of view of viewer.
func RenderMatch(m match.Match, viewer match.UserID) string {
	title := titleStyle.Render(fmt.Sprintf("Match %s  %s  v%d", m.ID, m.Type, m.Version))

	players := fmt.Sprintf("%s %s (%s)", labelStyle.Render("player1:"), m.Player1, m.Board.Player1().Symbol())
	if m.Player2 != 0 {
		players += fmt.Sprintf("   %s %s (%s)", labelStyle.Render("player2:"), m.Player2, m.Board.Player2().Symbol())
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, players, RenderBoard(m.Board), statusLine(m, viewer))
}

func statusLine(m match.Match, viewer match.UserID) string {
	switch m.State() {
	case match.StateWaiting:
		return labelStyle.Render("waiting for an opponent")
	case match.StateDraw:
		return noticeStyle.Render("draw")
	case match.StateWin:
		if m.Winner == viewer {
			return noticeStyle.Render("you won")
		}
		return noticeStyle.Render(fmt.Sprintf("winner: %s", m.Winner))
	}

	if m.CurrentUser() == viewer {
		return noticeStyle.Render(fmt.Sprintf("your move (%s), play %s <square> %d", m.Board.Turn().Symbol(), m.ID, m.Version))
	}
	return labelStyle.Render(fmt.Sprintf("waiting for %s to move", m.CurrentUser()))
}

// RenderStatistics draws one line per match type.
func RenderStatistics(stats []multiplayer.Statistics) string {
	if len(stats) == 0 {
		return labelStyle.Render("no games played yet")
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("%-12s %6s %5s %5s %6s %6s", "type", "played", "wins", "draws", "losses", "rate"))}
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("%-12s %6d %5d %5d %6d %5.0f%%",
			s.MatchType, s.GamesPlayed, s.Wins, s.Draws, s.Losses, s.WinRate*100))
	}
	return strings.Join(lines, "\n")
}

// RenderNotification formats a pushed event.
func RenderNotification(n multiplayer.Notification) string {
	var text string
	switch n.Kind {
	case multiplayer.EventMoveMade:
		text = "your opponent moved"
	case multiplayer.EventMatchForfeited:
		text = "the match was forfeited"
	case multiplayer.EventMatchOver:
		text = "the match is over"
	case multiplayer.EventMatchCancelled:
		text = "the search was cancelled"
	case multiplayer.EventOpponentJoined:
		text = "an opponent joined"
	default:
		text = n.Kind.String()
	}
	return noticeStyle.Render(fmt.Sprintf("* match %s v%d: %s (show %s)", n.MatchID, n.Version, text, n.MatchID))
}

// RenderDropped tells the user that n notifications were lost while the
// session was not keeping up.
func RenderDropped(n uint64) string {
	return labelStyle.Render(fmt.Sprintf("* %d older notification(s) dropped, use show to refresh", n))
}

// RenderError formats a failed command.
func RenderError(err error) string {
	return errorStyle.Render("error: " + err.Error())
}
