package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todos"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
	Out   io.Writer
	Err   io.Writer
	TUI   tui.Options
}

type runner struct {
	store *todos.Store
	opt   Options
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(store *todos.Store, args []string, opt Options) int {
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Err == nil {
		opt.Err = os.Stderr
	}
	r := &runner{store: store, opt: opt}

	if len(args) == 0 {
		PrintHelp(opt.Err)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0
	case "ls":
		return r.doList(a)
	case "add":
		return r.doAdd(a)
	case "done":
		return r.withID("done", a, r.store.Toggle, "toggled")
	case "rm":
		return r.withID("rm", a, r.store.Delete, "removed")
	case "select":
		return r.withID("select", a, r.store.ToggleSelected, "selection toggled")
	case "bulk-done":
		r.store.BulkComplete()
		return r.finish("completed selected")
	case "bulk-rm":
		r.store.BulkDelete()
		return r.finish("removed selected")
	case "sort":
		return r.doSort(a)
	case "search":
		return r.doSearch(a)
	case "tui":
		if err := tui.Run(r.store, opt.TUI); err != nil {
			ui.Fail(opt.Err, "tui: "+err.Error())
			return 1
		}
		return r.finish("")
	}

	ui.Fail(opt.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Err)
	PrintHelp(opt.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `tada - a tiny todo list

Usage:
  tada [flags] <subcommand> [args]

Subcommands:
  add [-d desc] [-p low|medium|high] [-due YYYY-MM-DD] <text...>
                         Add a new todo (text can be multiple words)
  ls [-filter all|completed|pending]
                         List todos
  done <id>              Toggle completion
  rm <id>                Remove a todo
  select <id>            Toggle the bulk selection mark
  bulk-done              Complete every selected todo
  bulk-rm                Remove every selected todo
  sort <priority|dueDate>
                         Reorder the stored list
  search <term>          Keep only todos whose text contains term
                         (in view search mode, only hides the others)
  tui                    Interactive list

Flags:
  -group                 group ls output by pending/done
  -data-dir <dir>        where storage.json lives (default ~/.tada)
  -search-mode <mode>    destructive (default) or view
  -search-debounce <d>   quiet interval for TUI search (default 300ms)
  -dark                  dark theme
  -log-level <level>     debug, info, warn or error

Examples:
  tada add -p high -due 2024-06-30 "File taxes"
  tada ls -filter pending
  tada done 1718000000000
  tada sort priority
`)
}

// -------------- subcommand impls ----------------

// finish reports persistence failures after a mutation. The change still
// happened in memory, so it is a warning, not an error.
func (r *runner) finish(msg string) int {
	if err := r.store.PersistErr(); err != nil {
		ui.Fail(r.opt.Err, "save: "+err.Error())
		return 1
	}
	if msg != "" {
		ui.OK(r.opt.Out, msg)
	}
	return 0
}

func (r *runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.opt.Err)
	return fs
}

func (r *runner) doList(args []string) int {
	fs := r.flagSet("ls")
	filter := fs.String("filter", "all", "all, completed or pending")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	f, err := model.ParseFilter(*filter)
	if err != nil {
		ui.Fail(r.opt.Err, "ls: "+err.Error())
		return 2
	}
	r.store.SetFilter(f)
	items := r.store.FilteredView()

	t := ui.Current()
	d, p := r.store.Stats()
	var lines []string
	lines = append(lines, ui.Header(d, p))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	if f != model.FilterAll {
		lines = append(lines, t.Muted.Render("filter: "+string(f)))
	}
	lines = append(lines, "")

	if r.opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	fmt.Fprintln(r.opt.Out, ui.Panel(lines))
	return 0
}

func (r *runner) doAdd(args []string) int {
	fs := r.flagSet("add")
	desc := fs.String("d", "", "description")
	prio := fs.String("p", "low", "priority: low, medium or high")
	due := fs.String("due", "", "due date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		ui.Fail(r.opt.Err, "usage: tada add [-d desc] [-p prio] [-due date] <text...>")
		return 2
	}
	p, err := model.ParsePriority(*prio)
	if err != nil {
		ui.Fail(r.opt.Err, "add: "+err.Error())
		return 2
	}
	if !r.store.Add(strings.Join(fs.Args(), " "), *desc, p, *due) {
		ui.Fail(r.opt.Err, "add: empty text")
		return 2
	}
	return r.finish("added")
}

// withID parses the single id argument, checks it exists, then applies op.
func (r *runner) withID(name string, args []string, op func(int64), msg string) int {
	if len(args) != 1 {
		ui.Fail(r.opt.Err, "usage: tada "+name+" <id>")
		return 2
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		ui.Fail(r.opt.Err, name+": not a number: "+args[0])
		return 2
	}
	if !r.exists(id) {
		ui.Fail(r.opt.Err, fmt.Sprintf("%s: no todo with id %d", name, id))
		fmt.Fprintln(r.opt.Err, ui.Current().Muted.Render("Hint: run `tada ls` to see valid ids"))
		return 2
	}
	op(id)
	return r.finish(msg)
}

func (r *runner) exists(id int64) bool {
	for _, t := range r.store.Todos() {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (r *runner) doSort(args []string) int {
	if len(args) != 1 {
		ui.Fail(r.opt.Err, "usage: tada sort <priority|dueDate>")
		return 2
	}
	c, err := model.ParseSortCriterion(args[0])
	if err != nil {
		ui.Fail(r.opt.Err, "sort: "+err.Error())
		return 2
	}
	if err := r.store.SortBy(c); err != nil {
		ui.Fail(r.opt.Err, "sort: "+err.Error())
		return 1
	}
	return r.finish("sorted by " + string(c))
}

func (r *runner) doSearch(args []string) int {
	if len(args) == 0 {
		ui.Fail(r.opt.Err, "usage: tada search <term>")
		return 2
	}
	before := len(r.store.Todos())
	r.store.ApplySearch(strings.Join(args, " "))
	after := len(r.store.FilteredView())
	return r.finish(fmt.Sprintf("%d of %d todos match", after, before))
}

// -------------- rendering helpers --------------

func flatLines(items []model.Todo) []string {
	if len(items) == 0 {
		return []string{ui.Current().Muted.Render("no todos")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		id := ui.Current().Muted.Render(fmt.Sprintf("%13d", it.ID))
		out = append(out, id+" "+ui.TodoLine(it))
	}
	return out
}

func groupLines(items []model.Todo) []string {
	var pend, done []model.Todo
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	t := ui.Current()
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
