package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tjmaxx/jevehome-agent/agent"
	"github.com/tjmaxx/jevehome-agent/events"
)

var (
	askConversation string
	askStructured   bool
	askShowSteps    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the agent one question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, manager, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer manager.CloseAll()

		if askShowSteps {
			a.Events().AddListener(events.ListenerFunc(printStep))
		}

		result, err := a.Run(ctx, agent.Request{
			ConversationID: askConversation,
			Message:        strings.Join(args, " "),
			WantStructured: askStructured,
		})
		if err != nil {
			return err
		}

		fmt.Println(result.Reply)
		if result.Visual != nil {
			raw, _ := json.MarshalIndent(result.Visual, "", "  ")
			printErr("visual payload:\n%s", raw)
		}
		if result.Artifact != nil {
			printErr("artifact: %s (%s)", result.Artifact.Title, result.Artifact.Kind)
		}
		for _, citation := range result.Citations {
			printErr("source: %s (%s)", citation.Title, citation.URL)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askConversation, "conversation", "cli", "conversation id for history")
	askCmd.Flags().BoolVar(&askStructured, "structured", false, "request structured-data extraction from tool output")
	askCmd.Flags().BoolVar(&askShowSteps, "steps", true, "print step progress to stderr")
}

func printStep(event *events.Event) {
	switch data := event.Data.(type) {
	case *events.ToolCallData:
		printErr("→ %s", data.Label)
	case *events.ToolResultData:
		if data.OK {
			printErr("✓ %s (%s)", data.Label, data.Duration)
		} else {
			printErr("✗ %s: %s", data.Label, data.Error)
		}
	case *events.RetryData:
		printErr("retry %d/%d: %s", data.Attempt, data.Max, data.Reason)
	case *events.WebSearchData:
		printErr("web search fallback (%d sources)", data.CitationCount)
	case *events.ArtifactData:
		printErr("artifact ready: %s (%s)", data.Title, data.Kind)
	}
}
