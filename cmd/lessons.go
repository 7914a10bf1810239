package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/practiced/internal/lessons"
	"github.com/abhisek/practiced/internal/ui/theme"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons in the local lesson file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveLessonsPath(cmd)
		index, err := lessons.LoadFile(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if index.Len() == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("No lessons found in %s.", path)))
			return nil
		}

		rows := make([][]string, 0, index.Len())
		for _, l := range index.List() {
			rows = append(rows, []string{l.ID, l.Title})
		}

		lipgloss.Fprintln(out, theme.Title.Render(fmt.Sprintf("%d lessons", index.Len()))+" "+theme.Hint.Render(path))
		lipgloss.Fprintln(out, theme.Table([]string{"ID", "Title"}, rows))
		return nil
	},
}
