package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mesh-intelligence/clientdesk/internal/listing"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

const browseHelp = `Commands:
  search <field> [term]   search a field; no term clears it
  sort <field>            sort the page; repeat to flip the order
  next | prev | page <n>  move between pages
  size <n>                rows per page
  filter <id|none>        apply a saved filter group
  lang <code>             switch locale
  quit`

func newClientsBrowseCmd(f *rootFlags) *cobra.Command {
	lf := &listFlags{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse clients interactively with debounced search",
		Long:  "Browse clients interactively. Each change is fetched after a quiet period.\n\n" + browseHelp,
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			st, err := a.prepareListing(cmd.Context(), lf)
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			b := &browser{ctx: cmd.Context(), app: a, st: st}
			b.co = listing.NewCoordinator(api, st.query,
				listing.WithDebounce(a.cfg.SearchDebounce),
				listing.WithLogger(a.log),
				listing.OnResult(b.render),
			)
			unsubscribe := a.locale.Subscribe(b.localeChanged)
			defer unsubscribe()

			b.co.Refresh()
			b.loop(cmd)
			b.co.Flush()
			b.co.Wait()
			b.co.Close()
			return nil
		}),
	}
	lf.register(cmd)
	return cmd
}

// browser is the state of one interactive session. mu serializes output
// and the listing state shared with the fetch goroutines.
type browser struct {
	mu  sync.Mutex
	ctx context.Context
	app *app
	st  *listingState
	co  *listing.Coordinator
}

func (b *browser) render(res listing.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if res.Err != nil {
		fmt.Fprintf(b.app.errOut, "could not load clients: %v\n", res.Err)
	}
	if err := b.app.printResult(b.st, res); err != nil {
		fmt.Fprintf(b.app.errOut, "render: %v\n", err)
	}
}

func (b *browser) localeChanged(code string) {
	b.app.flags.locale = code
	reg, err := b.app.registry(b.ctx)
	b.mu.Lock()
	if err == nil {
		b.st.reg = reg
	} else {
		fmt.Fprintf(b.app.errOut, "reload schema: %v\n", err)
	}
	b.mu.Unlock()
	b.co.SetLocale(code)
}

func (b *browser) loop(cmd *cobra.Command) {
	in := cmd.InOrStdin()
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	sc := bufio.NewScanner(in)
	for {
		if interactive {
			b.mu.Lock()
			fmt.Fprint(b.app.out, "> ")
			b.mu.Unlock()
		}
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if quit := b.exec(line); quit {
			return
		}
	}
}

// exec runs one browse command and reports whether to stop.
func (b *browser) exec(line string) bool {
	fields := strings.Fields(line)
	verb, rest := fields[0], fields[1:]
	q := b.co.Query()

	switch verb {
	case "quit", "q", "exit":
		return true
	case "help", "?":
		b.say(browseHelp)
	case "next", "n":
		if pages := q.Pages(b.co.Current().Page.Count); q.Page+1 >= pages {
			b.say("already on the last page")
			return false
		}
		b.co.SetPage(q.Page + 1)
	case "prev", "p":
		if q.Page == 0 {
			b.say("already on the first page")
			return false
		}
		b.co.SetPage(q.Page - 1)
	case "page", "size":
		if len(rest) != 1 {
			b.say("usage: " + verb + " <n>")
			return false
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 1 {
			b.say("expected a positive number")
			return false
		}
		if verb == "page" {
			b.co.SetPage(n - 1)
		} else {
			b.co.SetPageSize(n)
		}
	case "search", "/":
		if len(rest) == 0 {
			b.say("usage: search <field> [term]")
			return false
		}
		fd, err := resolveField(b.st.reg, rest[0])
		if err != nil {
			b.say(err.Error())
			return false
		}
		b.co.SetSearch(fd.Slug, strings.Join(rest[1:], " "))
	case "sort":
		if len(rest) != 1 {
			b.say("usage: sort <field>")
			return false
		}
		b.sortBy(rest[0])
	case "filter":
		if len(rest) != 1 {
			b.say("usage: filter <id|none>")
			return false
		}
		b.filter(rest[0])
	case "lang":
		if len(rest) != 1 {
			b.say("usage: lang <code>")
			return false
		}
		if err := b.app.locale.Set(rest[0]); err != nil {
			b.say(err.Error())
		}
	default:
		b.say(fmt.Sprintf("unknown command %q, try help", verb))
	}
	return false
}

func (b *browser) sortBy(name string) {
	slug := types.RecordIDKey
	if name != types.RecordIDKey {
		fd, err := resolveField(b.st.reg, name)
		if err != nil {
			b.say(err.Error())
			return
		}
		slug = fd.Slug
	}
	b.mu.Lock()
	b.st.sort = listing.Toggle(b.st.sort, slug, b.st.reg.Class(slug))
	b.mu.Unlock()
	b.render(b.co.Current())
}

func (b *browser) filter(id string) {
	if b.st.coll == nil {
		coll, err := b.app.collection(b.ctx)
		if err != nil {
			b.say(err.Error())
			return
		}
		b.st.coll = coll
	}
	g, _, err := pickFilter(b.st.coll, id)
	if err != nil {
		b.say(err.Error())
		return
	}
	b.mu.Lock()
	b.st.applied = g
	b.mu.Unlock()
	b.co.ApplyFilter(g.ID)
}

func (b *browser) say(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.app.out, msg)
}
