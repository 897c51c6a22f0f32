package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ewintr.nl/vidqa/client"
	"ewintr.nl/vidqa/model"
	"ewintr.nl/vidqa/prefs"
	"ewintr.nl/vidqa/store"
	"golang.org/x/exp/slog"
)

// CLI is the view layer: it reads commands, renders store state and invokes
// store operations. Cross-store coordination (chat follows the selected
// video) happens here, the stores never call each other.
type CLI struct {
	api    *client.Client
	videos *store.VideoStore
	chat   *store.ChatStore
	quiz   *store.QuizStore
	prefs  *prefs.DB
	logger *slog.Logger
}

func NewCLI(api *client.Client, videos *store.VideoStore, chat *store.ChatStore, quiz *store.QuizStore, prefDB *prefs.DB, logger *slog.Logger) *CLI {
	return &CLI{
		api:    api,
		videos: videos,
		chat:   chat,
		quiz:   quiz,
		prefs:  prefDB,
		logger: logger,
	}
}

func (c *CLI) Run(ctx context.Context, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "vidqa - ask your videos anything. Type 'help' for commands.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		c.dispatch(ctx, out, cmd, args)
	}
}

func (c *CLI) dispatch(ctx context.Context, out io.Writer, cmd string, args []string) {
	switch cmd {
	case "help":
		c.help(out)
	case "list":
		c.list(ctx, out)
	case "add":
		c.add(ctx, out, args)
	case "upload":
		c.upload(ctx, out, args)
	case "watch":
		c.watch(ctx, out, args)
	case "delete":
		c.delete(ctx, out, args)
	case "like":
		c.like(ctx, out)
	case "transcript":
		c.transcript(ctx, out)
	case "ask":
		c.ask(ctx, out, args)
	case "chat":
		c.showChat(out)
	case "clearchat":
		c.chat.Clear(ctx)
		fmt.Fprintln(out, "chat cleared")
	case "notes":
		c.notes(ctx, out)
	case "note":
		c.addNote(ctx, out, args)
	case "delnote":
		c.deleteNote(ctx, out, args)
	case "quiz":
		c.startQuiz(ctx, out, args)
	case "question":
		c.showQuestion(out)
	case "answer":
		c.answer(out, args)
	case "next":
		c.quiz.Next()
		c.showQuestion(out)
	case "prev":
		c.quiz.Prev()
		c.showQuestion(out)
	case "submit":
		c.submit(ctx, out)
	case "results":
		c.results(ctx, out)
	case "search":
		c.search(ctx, out, args)
	case "suggest":
		c.suggest(ctx, out, args)
	case "recent":
		c.recent(out)
	case "theme":
		c.theme(out, args)
	default:
		fmt.Fprintf(out, "unknown command %q, type 'help'\n", cmd)
	}
}

func (c *CLI) help(out io.Writer) {
	fmt.Fprint(out, `commands:
  list                     show all videos
  add <url> [title]        submit a video by link
  upload <path> [title]    upload a video file
  watch <number|id>        select a video and open its chat
  delete <number|id>       delete a video
  like                     toggle like on the selected video
  transcript               show the transcript of the selected video
  ask <question>           ask the assistant about the selected video
  chat                     show the conversation
  clearchat                clear the conversation
  notes                    list notes for the selected video
  note <seconds> <text>    add a note at a video timestamp
  delnote <id>             delete a note
  quiz [count]             generate a quiz for the selected video
  question                 show the current question
  answer <letter>          answer the current question
  next / prev              move between questions
  submit                   submit the quiz for grading
  results                  show the latest graded attempt
  search <query>           search across all videos
  suggest <prefix>         show search suggestions
  recent                   show recent searches
  theme [dark|light]       show or set the theme
  quit                     leave
`)
}

func (c *CLI) list(ctx context.Context, out io.Writer) {
	if err := c.videos.List(ctx); err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	videos := c.videos.Videos()
	if len(videos) == 0 {
		fmt.Fprintln(out, "no videos yet, try 'add <url>'")
		return
	}
	for i, v := range videos {
		marker := " "
		if v.IsLiked {
			marker = "*"
		}
		status := string(v.Status)
		if v.Status.Working() {
			status = fmt.Sprintf("%s %d%%", v.Status, v.Progress)
		}
		fmt.Fprintf(out, "%2d %s %-40s [%s]\n", i+1, marker, v.Title, status)
	}
}

func (c *CLI) add(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: add <url> [title]")
		return
	}
	title := strings.Join(args[1:], " ")
	video, err := c.videos.SubmitURL(ctx, args[0], title)
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "submitted %q, processing started\n", video.Title)
}

func (c *CLI) upload(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: upload <path> [title]")
		return
	}
	file, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	defer file.Close()
	title := strings.Join(args[1:], " ")
	video, err := c.videos.SubmitFile(ctx, filepath.Base(args[0]), file, title)
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "uploaded %q, processing started\n", video.Title)
}

func (c *CLI) watch(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: watch <number|id>")
		return
	}
	video := c.findVideo(args[0])
	if video == nil {
		fmt.Fprintf(out, "no video %q\n", args[0])
		return
	}
	c.videos.Select(video)
	if err := c.chat.Init(ctx, video.ID); err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "watching %q [%s], %d earlier messages\n", video.Title, video.Status, len(c.chat.Messages()))
}

func (c *CLI) delete(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: delete <number|id>")
		return
	}
	video := c.findVideo(args[0])
	if video == nil {
		fmt.Fprintf(out, "no video %q\n", args[0])
		return
	}
	if err := c.videos.Delete(ctx, video.ID); err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "deleted %q\n", video.Title)
}

func (c *CLI) like(ctx context.Context, out io.Writer) {
	video := c.videos.Current()
	if video == nil {
		fmt.Fprintln(out, "no video selected, try 'watch'")
		return
	}
	if err := c.videos.ToggleLike(ctx, video.ID); err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
	}
}

func (c *CLI) transcript(ctx context.Context, out io.Writer) {
	video := c.videos.Current()
	if video == nil {
		fmt.Fprintln(out, "no video selected, try 'watch'")
		return
	}
	transcript, err := c.api.Transcript(ctx, video.ID)
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintln(out, transcript)
}

func (c *CLI) ask(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: ask <question>")
		return
	}
	if c.chat.VideoID() == "" {
		fmt.Fprintln(out, "no video selected, try 'watch'")
		return
	}
	answer, err := c.chat.Send(ctx, strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintln(out, answer.Message)
	for _, ref := range answer.References {
		fmt.Fprintf(out, "  see %s-%s\n", formatTimestamp(ref.Start), formatTimestamp(ref.End))
	}
}

func (c *CLI) showChat(out io.Writer) {
	messages := c.chat.Messages()
	if len(messages) == 0 {
		fmt.Fprintln(out, "no messages yet, try 'ask'")
		return
	}
	for _, msg := range messages {
		tag := ""
		if msg.Delivery == model.DeliveryFailed {
			tag = " (failed)"
		}
		fmt.Fprintf(out, "%s%s: %s\n", msg.Role, tag, msg.Content)
	}
}

func (c *CLI) notes(ctx context.Context, out io.Writer) {
	video := c.videos.Current()
	if video == nil {
		fmt.Fprintln(out, "no video selected, try 'watch'")
		return
	}
	notes, err := c.api.Notes(ctx, video.ID)
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	if len(notes) == 0 {
		fmt.Fprintln(out, "no notes yet, try 'note'")
		return
	}
	for _, n := range notes {
		fmt.Fprintf(out, "%s %s %s\n", n.ID, formatTimestamp(n.Timestamp), n.Content)
	}
}

func (c *CLI) addNote(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: note <seconds> <text>")
		return
	}
	video := c.videos.Current()
	if video == nil {
		fmt.Fprintln(out, "no video selected, try 'watch'")
		return
	}
	timestamp, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(out, "usage: note <seconds> <text>")
		return
	}
	note, err := c.api.CreateNote(ctx, video.ID, strings.Join(args[1:], " "), timestamp)
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "noted at %s\n", formatTimestamp(note.Timestamp))
}

func (c *CLI) deleteNote(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: delnote <id>")
		return
	}
	video := c.videos.Current()
	if video == nil {
		fmt.Fprintln(out, "no video selected, try 'watch'")
		return
	}
	if err := c.api.DeleteNote(ctx, video.ID, args[0]); err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintln(out, "note deleted")
}

func (c *CLI) startQuiz(ctx context.Context, out io.Writer, args []string) {
	video := c.videos.Current()
	if video == nil {
		fmt.Fprintln(out, "no video selected, try 'watch'")
		return
	}
	count := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(out, "usage: quiz [count]")
			return
		}
		count = n
	}
	if _, err := c.quiz.Generate(ctx, video.ID, count); err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "quiz ready, %d questions\n", c.quiz.TotalQuestions())
	c.showQuestion(out)
}

func (c *CLI) showQuestion(out io.Writer) {
	question := c.quiz.CurrentQuestion()
	if question == nil {
		fmt.Fprintln(out, "no active quiz, try 'quiz'")
		return
	}
	answers := c.quiz.Answers()
	fmt.Fprintf(out, "question %d/%d (%.0f%% answered): %s\n",
		c.quiz.Index()+1, c.quiz.TotalQuestions(), c.quiz.Progress(), question.Question)
	for i, opt := range question.Options {
		marker := " "
		if answers[question.ID] == opt.ID {
			marker = ">"
		}
		fmt.Fprintf(out, " %s %c. %s\n", marker, 'a'+i, opt.Text)
	}
}

func (c *CLI) answer(out io.Writer, args []string) {
	question := c.quiz.CurrentQuestion()
	if question == nil {
		fmt.Fprintln(out, "no active quiz, try 'quiz'")
		return
	}
	if len(args) < 1 || len(args[0]) != 1 {
		fmt.Fprintln(out, "usage: answer <letter>")
		return
	}
	idx := int(args[0][0] - 'a')
	if idx < 0 || idx >= len(question.Options) {
		fmt.Fprintln(out, "usage: answer <letter>")
		return
	}
	c.quiz.Answer(question.ID, question.Options[idx].ID)
	c.quiz.Next()
	c.showQuestion(out)
}

func (c *CLI) submit(ctx context.Context, out io.Writer) {
	result, err := c.quiz.Submit(ctx)
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	if result == nil {
		fmt.Fprintln(out, "no active quiz, try 'quiz'")
		return
	}
	fmt.Fprintf(out, "score: %d/%d (%.1f%%)\n", result.Score, result.Total, result.Percentage)
	if result.Analysis != "" {
		fmt.Fprintln(out, result.Analysis)
	}
	if len(result.KnowledgeGaps) > 0 {
		fmt.Fprintf(out, "topics to review: %s\n", strings.Join(result.KnowledgeGaps, ", "))
	}
}

func (c *CLI) results(ctx context.Context, out io.Writer) {
	quiz := c.quiz.Quiz()
	if quiz == nil {
		fmt.Fprintln(out, "no active quiz, try 'quiz'")
		return
	}
	result, err := c.api.QuizResults(ctx, quiz.ID)
	if err != nil {
		if client.IsNotFound(err) {
			fmt.Fprintln(out, "not graded yet, try 'submit'")
			return
		}
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "score: %d/%d (%.1f%%)\n", result.Score, result.Total, result.Percentage)
	if result.Analysis != "" {
		fmt.Fprintln(out, result.Analysis)
	}
}

func (c *CLI) suggest(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: suggest <prefix>")
		return
	}
	suggestions, err := c.api.SearchSuggestions(ctx, strings.Join(args, " "))
	if err != nil {
		if client.IsCancelled(err) {
			return
		}
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	for _, s := range suggestions {
		fmt.Fprintln(out, s)
	}
}

func (c *CLI) search(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: search <query>")
		return
	}
	query := strings.Join(args, " ")
	resp, err := c.api.Search(ctx, client.SearchRequest{Query: query})
	if err != nil {
		if client.IsCancelled(err) {
			return
		}
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	if err := c.prefs.AddRecentSearch(query); err != nil {
		c.logger.Error("failed to store recent search", slog.String("error", err.Error()))
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "nothing found")
		return
	}
	for _, r := range resp.Results {
		fmt.Fprintf(out, "%s at %s: %s\n", r.VideoTitle, formatTimestamp(r.TimestampStart), r.Text)
	}
}

func (c *CLI) recent(out io.Writer) {
	queries, err := c.prefs.RecentSearches()
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	for _, q := range queries {
		fmt.Fprintln(out, q)
	}
}

func (c *CLI) theme(out io.Writer, args []string) {
	if len(args) == 0 {
		darkMode, err := c.prefs.DarkMode()
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
			return
		}
		if darkMode {
			fmt.Fprintln(out, "dark")
		} else {
			fmt.Fprintln(out, "light")
		}
		return
	}
	switch args[0] {
	case "dark", "light":
		if err := c.prefs.SetDarkMode(args[0] == "dark"); err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
		}
	default:
		fmt.Fprintln(out, "usage: theme [dark|light]")
	}
}

// findVideo resolves a list number or a video id.
func (c *CLI) findVideo(arg string) *model.Video {
	videos := c.videos.Videos()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(videos) {
		return &videos[n-1]
	}
	for _, v := range videos {
		if v.ID == arg {
			return &v
		}
	}

	return nil
}

func formatTimestamp(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
