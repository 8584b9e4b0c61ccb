// Package ui renders room state and chat to a terminal.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"watch-party/domain"
)

// ConsoleRenderer is the terminal implementation of the render contract.
type ConsoleRenderer struct {
	out io.Writer
}

func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

// RenderRoom prints the room header and a roster table.
func (r *ConsoleRenderer) RenderRoom(room domain.Room, isHost bool) {
	header := fmt.Sprintf("Room %s — %d/%d users", room.Code, len(room.Users), domain.MaxUsers)
	if isHost {
		header += " (you are the host)"
	}
	fmt.Fprintln(r.out, color.Bold.Sprint(header))

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Nickname", "Role", "Joined"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, user := range room.Users {
		role := ""
		if user.ID == room.HostUserID {
			role = "HOST"
		}
		table.Append([]string{user.Nickname, role, user.JoinedAt.Local().Format("15:04:05")})
	}
	table.Render()

	if room.Video != nil {
		fmt.Fprintln(r.out, color.Comment.Sprintf("Now playing: %s", room.Video.VideoID))
	}
}

// RenderMessage prints one chat entry. System notices are dimmed.
func (r *ConsoleRenderer) RenderMessage(message domain.Message) {
	at := message.Timestamp.Local().Format("15:04")
	if message.IsSystem {
		fmt.Fprintln(r.out, color.Gray.Sprintf("-- %s --", message.Content))
		return
	}
	fmt.Fprintf(r.out, "%s %s %s\n",
		color.Cyan.Sprint(message.Sender),
		color.Gray.Sprint(at),
		message.Content,
	)
}

// RenderError prints a non-fatal error notice. Terminal output cannot be
// retracted, so the auto-hide duration is ignored.
func (r *ConsoleRenderer) RenderError(message string, _ time.Duration) {
	fmt.Fprintln(r.out, color.Red.Sprint(message))
}
