// Package debatetest provides a scripted in-process debate backend for tests.
//
// [Server] serves the same routes as the real backend with gin on an
// httptest listener and keeps a small state machine: selecting a position
// moves to submit_post, a post moves to await_ai, and [Server.ReplyAsAI]
// appends the opponent's reply and moves to submit_post or debate_complete
// once the round is full. Advance walks through the three debates and then
// completes the assignment.
package debatetest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Iron-Ham/rebuttal/internal/debate"
)

// Route names accepted by Calls and Fail.
const (
	RouteAssignment = "assignment"
	RouteProgress   = "progress"
	RoutePosition   = "position"
	RoutePosts      = "posts"
	RouteChallenges = "challenges"
	RouteAdvance    = "advance"
	RouteScore      = "score"
)

// Failure is a scripted error response.
type Failure struct {
	Status int
	Body   gin.H
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires "Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithCamelCase encodes responses with camelCase keys.
func WithCamelCase() Option {
	return func(s *Server) { s.camel = true }
}

// WithStatements sets the number of student statements per debate.
func WithStatements(n int) Option {
	return func(s *Server) { s.statements = n }
}

// WithPositions sets the assigned side of each debate.
func WithPositions(p ...debate.Position) Option {
	return func(s *Server) { copy(s.positions, p) }
}

// WithChallenges sets the catalog offered after each AI reply.
func WithChallenges(opts ...debate.ChallengeOption) Option {
	return func(s *Server) { s.challenges = opts }
}

// WithCompleted starts the server with every debate finished and the given
// per-debate scores.
func WithCompleted(scores ...float64) Option {
	return func(s *Server) {
		s.complete = true
		s.current = debate.NumDebates
		for i := range s.scores {
			if i < len(scores) {
				v := scores[i]
				s.scores[i] = &v
			}
		}
	}
}

// Server is the fake backend.
type Server struct {
	t      testing.TB
	srv    *httptest.Server
	token  string
	camel  bool
	nextID int

	mu         sync.Mutex
	title      string
	statements int
	positions  []debate.Position
	challenges []debate.ChallengeOption
	current    int // 1-based debate
	action     debate.NextAction
	posts      []debate.Post
	scores     []*float64
	complete   bool
	flagNext   bool
	failures   map[string][]Failure
	calls      map[string]int
	requestIDs []string
	lastBody   map[string]gin.H
}

// New starts a Server in choose_position for debate 1 and stops it when the
// test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		t:          t,
		title:      "School uniforms",
		statements: 5,
		positions:  []debate.Position{debate.PositionChoice, debate.PositionPro, debate.PositionCon},
		challenges: []debate.ChallengeOption{
			{Kind: debate.ChallengeFallacy, Key: "ad_hominem", Label: "Ad hominem", Description: "Attacks the person instead of the argument."},
			{Kind: debate.ChallengeFallacy, Key: "strawman", Label: "Straw man", Description: "Misrepresents the opposing argument."},
			{Kind: debate.ChallengeAppeal, Key: "pathos", Label: "Appeal to emotion", Description: "Persuades through feelings."},
		},
		current:  1,
		scores:   make([]*float64, debate.NumDebates),
		failures: make(map[string][]Failure),
		calls:    make(map[string]int),
		lastBody: make(map[string]gin.H),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.action = s.entryAction()
	if s.complete {
		s.action = debate.ActionAssignmentComplete
	}

	s.srv = httptest.NewServer(s.router())
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// RequestIDs returns the X-Request-ID of every request, in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// LastBody returns the most recent JSON body sent to route.
func (s *Server) LastBody(route string) gin.H {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[route]
}

// Action returns the server's current nextAction.
func (s *Server) Action() debate.NextAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action
}

// Position returns the recorded side for debate n.
func (s *Server) Position(n int) debate.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions[n-1]
}

// Fail makes the next request to route return f instead of its normal
// response. Failures queue in order.
func (s *Server) Fail(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], f)
}

// FlagNextPost holds the next submitted post for moderation.
func (s *Server) FlagNextPost() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flagNext = true
}

// ReplyAsAI appends the opponent's reply. It fails the test unless the
// server is in await_ai.
func (s *Server) ReplyAsAI(content, fallacy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.action != debate.ActionAwaitAI {
		s.t.Errorf("ReplyAsAI in %s", s.action)
		return
	}
	post := s.newPost(debate.PostAI, content)
	post.AIPersonality = "socratic"
	post.ContainsFallacy = fallacy != ""
	post.FallacyType = fallacy
	s.posts = append(s.posts, post)

	students := 0
	for _, p := range s.posts {
		if p.Type == debate.PostStudent {
			students++
		}
	}
	if students >= s.statements {
		score := 70 + float64(10*s.current)
		s.scores[s.current-1] = &score
		s.action = debate.ActionDebateComplete
		return
	}
	s.action = debate.ActionSubmitPost
}

func (s *Server) entryAction() debate.NextAction {
	if s.positions[s.current-1] == debate.PositionChoice {
		return debate.ActionChoosePosition
	}
	return debate.ActionSubmitPost
}

func (s *Server) newPost(kind debate.PostType, content string) debate.Post {
	s.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	return debate.Post{
		ID:              strconv.Itoa(s.nextID),
		DebateNumber:    s.current,
		RoundNumber:     s.current,
		StatementNumber: len(s.posts) + 1,
		Type:            kind,
		Content:         content,
		WordCount:       debate.CountWords(content),
		Moderation:      debate.ModerationApproved,
		CreatedAt:       &now,
	}
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record, s.auth)

	g := r.Group("/api/debates/assignments/:id")
	g.GET("", s.route(RouteAssignment, s.getAssignment))
	g.GET("/progress", s.route(RouteProgress, s.getProgress))
	g.POST("/position", s.route(RoutePosition, s.postPosition))
	g.POST("/posts", s.route(RoutePosts, s.postPost))
	g.POST("/challenges", s.route(RouteChallenges, s.postChallenge))
	g.POST("/advance", s.route(RouteAdvance, s.postAdvance))
	g.GET("/score", s.route(RouteScore, s.getScore))
	return r
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requestIDs = append(s.requestIDs, c.GetHeader("X-Request-ID"))
	s.mu.Unlock()
	c.Next()
}

func (s *Server) auth(c *gin.Context) {
	if s.token == "" {
		c.Next()
		return
	}
	if c.GetHeader("Authorization") != "Bearer "+s.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.Next()
}

// route counts the call, binds any JSON body and replays a scripted failure
// before handing off to h. h runs with s.mu held.
func (s *Server) route(name string, h func(*gin.Context, gin.H)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body gin.H
		if c.Request.Method == http.MethodPost && c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: " + err.Error()})
				return
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls[name]++
		s.lastBody[name] = body

		if queue := s.failures[name]; len(queue) > 0 {
			f := queue[0]
			s.failures[name] = queue[1:]
			c.JSON(f.Status, f.Body)
			return
		}
		h(c, body)
	}
}

func (s *Server) getAssignment(c *gin.Context, _ gin.H) {
	due := time.Date(2026, 11, 1, 23, 59, 0, 0, time.UTC)
	c.JSON(http.StatusOK, s.encode(gin.H{
		"id":                   c.Param("id"),
		"title":                s.title,
		"topic":                "Should schools require uniforms?",
		"description":          "Argue three debates against the AI.",
		"due_date":             due.Format(time.RFC3339),
		"statements_per_round": s.statements,
	}))
}

func (s *Server) getProgress(c *gin.Context, _ gin.H) {
	c.JSON(http.StatusOK, s.progressBody(c.Param("id")))
}

func (s *Server) postPosition(c *gin.Context, body gin.H) {
	pos := debate.Position(fmt.Sprint(body["position"]))
	if s.action != debate.ActionChoosePosition {
		c.JSON(http.StatusConflict, gin.H{"detail": "Position already selected"})
		return
	}
	if !pos.Chosen() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Position must be pro or con"})
		return
	}
	s.positions[s.current-1] = pos
	s.action = debate.ActionSubmitPost
	c.JSON(http.StatusOK, gin.H{"position": string(pos)})
}

func (s *Server) postPost(c *gin.Context, body gin.H) {
	if s.action != debate.ActionSubmitPost {
		c.JSON(http.StatusConflict, gin.H{"detail": "Not your turn"})
		return
	}
	content := fmt.Sprint(body["content"])
	post := s.newPost(debate.PostStudent, content)
	if t, ok := body["rhetorical_technique"].(string); ok {
		post.Technique = debate.Technique(t)
	}

	if s.flagNext {
		s.flagNext = false
		post.Moderation = debate.ModerationFlagged
		c.JSON(http.StatusCreated, gin.H{"post": s.encodePost(post), "flagged": true})
		return
	}

	s.posts = append(s.posts, post)
	s.action = debate.ActionAwaitAI
	c.JSON(http.StatusCreated, s.encodePost(post))
}

func (s *Server) postChallenge(c *gin.Context, body gin.H) {
	postID := fmt.Sprint(body["post_id"])
	if len(s.posts) == 0 || s.posts[len(s.posts)-1].ID != postID || s.posts[len(s.posts)-1].Type != debate.PostAI {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only the latest AI post can be challenged"})
		return
	}
	target := s.posts[len(s.posts)-1]
	value := fmt.Sprint(body["challenge_value"])
	correct := target.ContainsFallacy && target.FallacyType == value
	bonus := 0.0
	explanation := "That post does not contain " + strings.ReplaceAll(value, "_", " ") + "."
	if correct {
		bonus = 2
		explanation = "Correct: the reply used " + strings.ReplaceAll(value, "_", " ") + "."
	}
	c.JSON(http.StatusOK, s.encode(gin.H{
		"is_correct":   correct,
		"bonus_points": bonus,
		"explanation":  explanation,
	}))
}

func (s *Server) postAdvance(c *gin.Context, _ gin.H) {
	if s.action != debate.ActionDebateComplete {
		c.JSON(http.StatusConflict, gin.H{"detail": "Debate is not complete"})
		return
	}
	if s.current == debate.NumDebates {
		s.complete = true
		s.action = debate.ActionAssignmentComplete
		c.JSON(http.StatusOK, s.encode(gin.H{"assignment_complete": true, "status": string(debate.StatusCompleted)}))
		return
	}
	s.current++
	s.posts = nil
	s.action = s.entryAction()
	c.JSON(http.StatusOK, s.encode(gin.H{"assignment_complete": false, "next_debate": s.current}))
}

func (s *Server) getScore(c *gin.Context, _ gin.H) {
	if !s.complete {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Assignment not complete"})
		return
	}
	body := gin.H{
		"assignment_id":     c.Param("id"),
		"improvement_bonus": 3,
		"consistency_bonus": 2,
	}
	total := 0.0
	for n, sc := range s.scores {
		v := 0.0
		if sc != nil {
			v = *sc
		}
		total += v
		body[fmt.Sprintf("debate_%d_score", n+1)] = v
	}
	body["final_grade"] = total/float64(len(s.scores)) + 5
	c.JSON(http.StatusOK, s.encode(body))
}

// progressBody renders the progress payload. s.mu must be held.
func (s *Server) progressBody(id string) gin.H {
	status := debate.Status(fmt.Sprintf("debate_%d", s.current))
	if s.complete {
		status = debate.StatusCompleted
	}
	sd := gin.H{
		"id":               "sd-" + id,
		"assignment_id":    id,
		"status":           string(status),
		"current_debate":   s.current,
		"current_round":    s.current,
		"final_percentage": nil,
	}
	for n := 1; n <= debate.NumDebates; n++ {
		sd[s.debateKey(n, "position")] = string(s.positions[n-1])
		if sc := s.scores[n-1]; sc != nil {
			sd[s.debateKey(n, "score")] = *sc
		} else {
			sd[s.debateKey(n, "score")] = nil
		}
	}

	posts := make([]gin.H, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, s.encodePost(p))
	}
	challenges := make([]gin.H, 0, len(s.challenges))
	if len(s.posts) > 0 && s.posts[len(s.posts)-1].Type == debate.PostAI {
		for _, ch := range s.challenges {
			challenges = append(challenges, gin.H{
				"type":        string(ch.Kind),
				"key":         ch.Key,
				"label":       ch.Label,
				"description": ch.Description,
			})
		}
	}

	return s.encode(gin.H{
		"student_debate":       s.encode(sd),
		"current_posts":        posts,
		"available_challenges": challenges,
		"next_action":          string(s.action),
		"can_submit_post":      s.action == debate.ActionSubmitPost,
		"statements_per_round": s.statements,
		"current_statement":    len(s.posts) + 1,
		"topic":                "Should schools require uniforms?",
	})
}

func (s *Server) encodePost(p debate.Post) gin.H {
	body := gin.H{
		"id":                   p.ID,
		"debate_number":        p.DebateNumber,
		"round_number":         p.RoundNumber,
		"statement_number":     p.StatementNumber,
		"post_type":            string(p.Type),
		"content":              p.Content,
		"word_count":           p.WordCount,
		"contains_fallacy":     p.ContainsFallacy,
		"moderation_status":    string(p.Moderation),
		"rhetorical_technique": string(p.Technique),
	}
	if p.AIPersonality != "" {
		body["ai_personality"] = p.AIPersonality
	}
	if p.FallacyType != "" {
		body["fallacy_type"] = p.FallacyType
	}
	if p.CreatedAt != nil {
		body["created_at"] = p.CreatedAt.Format(time.RFC3339)
	}
	if p.Type == debate.PostStudent {
		body["clarity_score"] = 8
		body["evidence_score"] = 7
		body["logic_score"] = 8
		body["persuasiveness_score"] = 7
		body["rebuttal_score"] = 6
	}
	return s.encode(body)
}

func (s *Server) debateKey(n int, field string) string {
	if s.camel {
		return fmt.Sprintf("debate_%d%s", n, strings.ToUpper(field[:1])+field[1:])
	}
	return fmt.Sprintf("debate_%d_%s", n, field)
}

// encode rewrites top-level snake_case keys to camelCase when configured.
func (s *Server) encode(h gin.H) gin.H {
	if !s.camel {
		return h
	}
	out := make(gin.H, len(h))
	for k, v := range h {
		if strings.HasPrefix(k, "debate_") {
			out[k] = v
			continue
		}
		out[camel(k)] = v
	}
	return out
}

func camel(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
