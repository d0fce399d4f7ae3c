// ABOUTME: Chat command runs one recommendation conversation in the terminal
// ABOUTME: Cuisine and place buttons become numbered choices; everything else is free text
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harper/dongne/internal/chat"
	"github.com/harper/dongne/internal/core"
	"github.com/harper/dongne/internal/models"
	"github.com/spf13/cobra"
)

var chatUser string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the recommender in the terminal",
		Long: `Hold one recommendation conversation in the terminal.

Pick a cuisine by number or name, describe a menu and a mood,
say yes to see places, then pick a place by number.
Type /quit to leave.`,
		Example: `  dongne chat --user harper
  dongne --offline catalog.json chat`,
		RunE: runChatCmd,
	}

	cmd.Flags().StringVar(&chatUser, "user", "", "User id (default $USER)")

	return cmd
}

func runChatCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	user := chatUser
	if user == "" {
		user = os.Getenv("USER")
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	return runConversation(ctx, a.chat, user, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runConversation drives one session until END, /quit or end of input
func runConversation(ctx context.Context, svc *chat.Service, userID string, in io.Reader, out io.Writer) error {
	sess, err := svc.Start(ctx, userID)
	if err != nil {
		return err
	}
	shown := printBotLines(out, sess, 0)

	scanner := bufio.NewScanner(in)
	for sess.Stage != models.StageEnd {
		if sess.Stage == models.StageAskCuisine {
			for i, c := range svc.Cuisines() {
				fmt.Fprintf(out, "  %d. %s\n", i+1, c)
			}
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "/quit" {
			return nil
		}

		next, err := applyInput(ctx, svc, sess, input)
		if next != nil {
			sess = next
			shown = printBotLines(out, sess, shown)
		}
		if err != nil {
			if !userError(err) {
				return err
			}
			if next == nil || next.LastBotMessage() == "" {
				fmt.Fprintf(out, "(%v)\n", err)
			}
		}
	}
	return nil
}

func applyInput(ctx context.Context, svc *chat.Service, sess *models.Session, input string) (*models.Session, error) {
	switch sess.Stage {
	case models.StageAskCuisine:
		cuisine, ok := resolveCuisine(input, svc.Cuisines())
		if !ok {
			return nil, fmt.Errorf("%w: pick a number from the list", core.ErrInvalidSelection)
		}
		return svc.ChooseCuisine(ctx, sess.ID, cuisine)
	case models.StageChoosePlace:
		n, err := strconv.Atoi(input)
		if err != nil {
			return nil, fmt.Errorf("%w: enter the place number", core.ErrInvalidSelection)
		}
		return svc.ChoosePlace(ctx, sess.ID, n)
	}
	return svc.SendMessage(ctx, sess.ID, input)
}

// resolveCuisine accepts a 1-based number or the cuisine name
func resolveCuisine(input string, cuisines []string) (string, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(cuisines) {
			return cuisines[n-1], true
		}
		return "", false
	}
	if containsString(cuisines, input) {
		return input, true
	}
	return "", false
}

func userError(err error) bool {
	return errors.Is(err, core.ErrInvalidSelection) ||
		errors.Is(err, core.ErrEmptyInput) ||
		errors.Is(err, core.ErrInputNotAccepted) ||
		errors.Is(err, core.ErrChoiceNotSaved)
}

// printBotLines prints transcript entries from index from and returns the new length
func printBotLines(out io.Writer, sess *models.Session, from int) int {
	if from > len(sess.Transcript) {
		from = 0
	}
	for _, entry := range sess.Transcript[from:] {
		if entry.Role == models.RoleBot {
			fmt.Fprintf(out, "동네: %s\n", entry.Content)
		}
	}
	return len(sess.Transcript)
}
