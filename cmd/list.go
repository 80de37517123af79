package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/chatmarks/internal/annotations"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored bookmarks and highlights",
	Long:  `Prints every annotated chat with its bookmarks, notes, and highlights. Use --chat to restrict to one chat.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().String("chat", "", "only list annotations for this chat")
	listCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	chatFilter, _ := cmd.Flags().GetString("chat")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	settingsStore, session, store, err := openStores(cfg, database)
	if err != nil {
		return err
	}
	defer settingsStore.Close()
	defer session.Close()

	sets := store.ListAll()

	if chatFilter != "" {
		set, ok := sets[chatFilter]
		if !ok {
			return fmt.Errorf("no annotations for chat %q", chatFilter)
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(set)
		}
		printChat(chatFilter, set)
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(sets)
	}

	if len(sets) == 0 {
		fmt.Println("No annotations stored yet.")
		return nil
	}

	chatIDs := make([]string, 0, len(sets))
	for id := range sets {
		chatIDs = append(chatIDs, id)
	}
	sort.Strings(chatIDs)

	for _, id := range chatIDs {
		printChat(id, sets[id])
	}
	return nil
}

func printChat(chatID string, set *annotations.ChatAnnotationSet) {
	name := set.ChatName
	if name == "" {
		name = "Unknown"
	}
	fmt.Printf("%s (%s)\n", chatID, name)

	bookmarks := append([]*annotations.Bookmark(nil), set.Bookmarks...)
	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].MessageID < bookmarks[j].MessageID })

	for _, b := range bookmarks {
		if b.IsHighlightOnly {
			fmt.Printf("  #%d %s: highlights only\n", b.MessageID, b.MessageName)
		} else {
			fmt.Printf("  #%d %s: %q\n", b.MessageID, b.MessageName, b.Preview)
			if b.Note != "" {
				fmt.Printf("      note: %s\n", b.Note)
			}
		}
		for _, h := range b.Highlights {
			fmt.Printf("      highlight [%s] %q\n", h.Color, h.Text)
			if h.Note != "" {
				fmt.Printf("        note: %s\n", h.Note)
			}
		}
	}
}
