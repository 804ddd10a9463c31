package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/valet/internal/chat"
	"github.com/soyeahso/valet/internal/openai"
	"github.com/soyeahso/valet/internal/store"
	"github.com/soyeahso/valet/internal/tools"
)

const systemPrompt = "You are a helpful assistant."

func newChatCmd() *cobra.Command {
	var (
		sessionID string
		tags      []string
		stream    bool
		ephemeral bool
	)

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Chat with the assistant",
		Long: "Starts an interactive chat, or answers a single prompt when one is given.\n" +
			"Sessions are persisted by default; use --session to resume one.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client := openai.NewClient(cfg.API.Hostname, cfg.API.Key, cfg.API.Model, log)

			transcript := []openai.Message{
				openai.NewMessage(openai.RoleSystem, systemPrompt),
			}
			var opts []chat.Option

			if !ephemeral {
				dbPath := cfg.Session.DBPath
				if dbPath == "" {
					dbPath = paths.DB
				}
				db, err := store.Open(dbPath, log)
				if err != nil {
					return err
				}
				defer db.Close()

				chatStore := store.NewChatStore(db)
				if sessionID != "" {
					prior, err := chatStore.Messages(ctx, sessionID)
					if err != nil {
						return err
					}
					if len(prior) > 0 {
						transcript = prior
					}
				}
				opts = append(opts, chat.WithPersistence(chatStore, sessionID, append(cfg.Session.Tags, tags...)))

				reg, err := buildTools(db)
				if err != nil {
					return err
				}
				opts = append(opts, chat.WithTools(reg))
			}

			opts = append(opts, chat.WithTranscript(transcript))
			if stream || cfg.API.Stream {
				opts = append(opts, chat.WithStreaming(func(data string) {
					log.Debug().Str("data", data).Msg("stream event")
				}))
			}

			session := chat.New(client, log, opts...)
			if session.SessionID() != "" {
				log.Info().Str("sessionId", session.SessionID()).Msg("chat session")
			}

			if len(args) > 0 {
				return runTurn(cmd, session, strings.Join(args, " "))
			}
			return runInteractive(cmd, session)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id to resume")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tags to record on the session")
	cmd.Flags().BoolVar(&stream, "stream", false, "use the streaming client")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "run without persistence or tools")

	return cmd
}

// buildTools registers the built-in capabilities.
func buildTools(db *store.DB) (*chat.Registry, error) {
	workspace := cfg.Workspace
	if workspace == "" {
		workspace = paths.Workspace
	}
	notes := store.NewNoteStore(db)

	reg := chat.NewRegistry()
	for _, t := range []openai.Tool{
		tools.NewMemoryTool(workspace),
		tools.NewNoteSearchTool(notes),
		tools.NewTasksDueTodayTool(notes),
	} {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// runTurn sends one user message and prints the final answer.
func runTurn(cmd *cobra.Command, session *chat.Chat, prompt string) error {
	msgs, err := session.Send(cmd.Context(), openai.NewMessage(openai.RoleUser, prompt))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msgs[len(msgs)-1].Text())
	return nil
}

// runInteractive reads prompts from stdin until EOF.
func runInteractive(cmd *cobra.Command, session *chat.Chat) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(cmd.OutOrStdout(), ">>> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runTurn(cmd, session, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
