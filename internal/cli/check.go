package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check [content]",
	Short: "Validate a content description without rendering",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	doc, err := config.LoadContent(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("coding=%s language=%s size=%dx%d items=%d\n",
		doc.Coding, doc.Language, doc.Width, doc.Height, len(doc.Contents))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Item", "Key", "Text bytes", "Images"})

	for i, item := range doc.Contents {
		name, err := doc.ItemName(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		text, err := doc.ItemText(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}

		key := store.Slugify(name)
		if key == "" {
			key = store.TextKey(text)
		}
		display := name
		if display == "" {
			display = "(unnamed)"
		}

		t.AppendRow(table.Row{i + 1, display, key, len(text), len(item.ImageURLs)})
	}

	t.Render()
	return nil
}
