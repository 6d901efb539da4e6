package session

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rebuttal/internal/debate"
)

var statusCmd = &cobra.Command{
	Use:   "status <assignment-id>",
	Short: "Show where an assignment stands",
	Long: `Fetch an assignment and print the current debate, your position and the
next step the server expects. Nothing is submitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var (
	statusJSON bool // Output as JSON
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctrl := e.newController(args[0])
	defer ctrl.Close()

	snap, err := ctrl.Load(cmd.Context())
	if err != nil {
		return err
	}

	if statusJSON {
		return printStatusJSON(cmd.OutOrStdout(), snap)
	}
	printStatusText(cmd.OutOrStdout(), snap)
	return nil
}

// actionHint is the one-line explanation of a next action.
func actionHint(a debate.NextAction) string {
	switch a {
	case debate.ActionChoosePosition:
		return "choose PRO or CON for this debate"
	case debate.ActionSubmitPost:
		return "your turn to write a statement"
	case debate.ActionAwaitAI:
		return "waiting for the AI opponent's reply"
	case debate.ActionDebateComplete:
		return "this debate is over; continue to the next one"
	case debate.ActionAssignmentComplete:
		return "all debates are done; see 'rebuttal results'"
	default:
		return "unknown step"
	}
}

func printStatusText(w io.Writer, snap debate.Snapshot) {
	a := snap.Assignment
	p := snap.Progress
	sd := p.StudentDebate

	title := a.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "Assignment: %s (%s)\n", title, a.ID)
	if topic := firstNonEmpty(p.Topic, a.Topic); topic != "" {
		fmt.Fprintf(w, "Topic: %s\n", topic)
	}
	total := a.Debates
	if total <= 0 {
		total = debate.NumDebates
	}
	fmt.Fprintf(w, "Debate: %d/%d\n", max(sd.CurrentDebate, 1), total)
	if pos := sd.CurrentPosition(); pos.Chosen() {
		fmt.Fprintf(w, "Position: %s\n", strings.ToUpper(string(pos)))
	}
	if p.StatementsPerRound > 0 {
		fmt.Fprintf(w, "Statements: %d/%d\n", p.StudentStatements(), p.StatementsPerRound)
	}
	fmt.Fprintf(w, "Next: %s (%s)\n", p.NextAction, actionHint(p.NextAction))

	if last, ok := p.LastPost(); ok {
		author := "You"
		if last.Type == debate.PostAI {
			author = "Opponent"
		}
		fmt.Fprintf(w, "Last statement: %s, %d words\n", author, last.WordCount)
	}

	var scores []string
	for n := 1; n <= total; n++ {
		if s, ok := sd.Score(n); ok {
			scores = append(scores, fmt.Sprintf("debate %d: %.1f%%", n, s))
		}
	}
	if len(scores) > 0 {
		fmt.Fprintf(w, "Scores: %s\n", strings.Join(scores, ", "))
	}
}

type statusJSONOutput struct {
	AssignmentID  string             `json:"assignment_id"`
	Title         string             `json:"title"`
	Topic         string             `json:"topic,omitempty"`
	Status        string             `json:"status"`
	CurrentDebate int                `json:"current_debate"`
	CurrentRound  int                `json:"current_round"`
	Position      string             `json:"position,omitempty"`
	NextAction    string             `json:"next_action"`
	CanSubmitPost bool               `json:"can_submit_post"`
	Statements    int                `json:"statements"`
	PerRound      int                `json:"statements_per_round"`
	Posts         int                `json:"posts"`
	Scores        map[string]float64 `json:"scores,omitempty"`
}

func printStatusJSON(w io.Writer, snap debate.Snapshot) error {
	p := snap.Progress
	sd := p.StudentDebate
	out := statusJSONOutput{
		AssignmentID:  snap.Assignment.ID,
		Title:         snap.Assignment.Title,
		Topic:         firstNonEmpty(p.Topic, snap.Assignment.Topic),
		Status:        string(sd.Status),
		CurrentDebate: sd.CurrentDebate,
		CurrentRound:  sd.CurrentRound,
		NextAction:    string(p.NextAction),
		CanSubmitPost: p.CanSubmitPost,
		Statements:    p.StudentStatements(),
		PerRound:      p.StatementsPerRound,
		Posts:         len(p.Posts),
	}
	if pos := sd.CurrentPosition(); pos.Chosen() {
		out.Position = string(pos)
	}
	for n := 1; n <= debate.NumDebates; n++ {
		if s, ok := sd.Score(n); ok {
			if out.Scores == nil {
				out.Scores = make(map[string]float64)
			}
			out.Scores[fmt.Sprintf("debate_%d", n)] = s
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
