package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/internal/codec"
	"github.com/mesh-intelligence/clientdesk/internal/csvio"
	"github.com/mesh-intelligence/clientdesk/internal/filter"
	"github.com/mesh-intelligence/clientdesk/internal/listing"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/internal/validate"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// noFilter disables the default filter group.
const noFilter = "none"

func newClientsCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List, edit, import and export clients",
	}
	cmd.AddCommand(
		newClientsListCmd(f),
		newClientsBrowseCmd(f),
		newClientsGetCmd(f),
		newClientsCreateCmd(f),
		newClientsUpdateCmd(f),
		newClientsDeleteCmd(f),
		newClientsExportCmd(f),
		newClientsImportCmd(f),
	)
	return cmd
}

// listFlags are shared by list and browse.
type listFlags struct {
	page     int
	pageSize int
	search   []string
	sort     string
	filter   string
}

func (lf *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&lf.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&lf.pageSize, "page-size", 0, "rows per page (default from config)")
	cmd.Flags().StringArrayVar(&lf.search, "search", nil, "search term as field=term (repeatable)")
	cmd.Flags().StringVar(&lf.sort, "sort", "", "sort the page by field; prefix with - for descending")
	cmd.Flags().StringVar(&lf.filter, "filter", "", `saved filter group id, or "none" to skip the default`)
}

// listingState is the prepared state of a listing command.
type listingState struct {
	reg     *schema.Registry
	coll    *filter.Collection
	query   listing.Query
	applied types.FilterGroup
	sort    types.SortState
}

func (a *app) prepareListing(ctx context.Context, lf *listFlags) (*listingState, error) {
	reg, err := a.registry(ctx)
	if err != nil {
		return nil, err
	}
	size := lf.pageSize
	if size <= 0 {
		size = a.cfg.PageSize
	}
	st := &listingState{reg: reg, query: listing.NewQuery(size, a.lang())}

	search, err := parseAssignments(reg, lf.search)
	if err != nil {
		return nil, err
	}
	for slug, term := range search {
		st.query.SetSearch(slug, fmt.Sprint(term))
	}

	if lf.filter != noFilter {
		coll, err := a.collection(ctx)
		if err != nil {
			return nil, err
		}
		g, ok, err := pickFilter(coll, lf.filter)
		if err != nil {
			return nil, err
		}
		if ok {
			st.applied = g
			st.query.SetFilter(g.ID)
		}
		st.coll = coll
	}
	st.query.SetPage(lf.page - 1)

	if lf.sort != "" {
		name, order := strings.TrimPrefix(lf.sort, "-"), types.OrderAsc
		if strings.HasPrefix(lf.sort, "-") {
			order = types.OrderDesc
		}
		slug := types.RecordIDKey
		if name != types.RecordIDKey {
			fd, err := resolveField(reg, name)
			if err != nil {
				return nil, err
			}
			slug = fd.Slug
		}
		st.sort = types.SortState{Field: slug, Order: order, Class: reg.Class(slug)}
	}
	return st, nil
}

// printResult writes one fetched page with its footer.
func (a *app) printResult(st *listingState, res listing.Result) error {
	rows := append([]types.EditableRecord(nil), res.Page.Data...)
	listing.Sort(rows, st.sort, st.reg)

	if a.flags.jsonMode {
		if rows == nil {
			rows = []types.EditableRecord{}
		}
		return a.printJSON(map[string]any{
			"count":     res.Page.Count,
			"page":      res.Query.Page + 1,
			"page_size": res.Query.PageSize,
			"filter":    res.AppliedFilter(),
			"data":      rows,
		})
	}
	if err := printRecords(a.out, st.reg, rows); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d, %d clients\n", res.Query.Page+1, max(res.Query.Pages(res.Page.Count), 1), res.Page.Count)
	if id := res.AppliedFilter(); id != "" {
		name := st.applied.Name
		if st.applied.ID != id {
			name = id
		}
		fmt.Fprintf(a.out, "Filter: %s\n", name)
	}
	return nil
}

func newClientsListCmd(f *rootFlags) *cobra.Command {
	lf := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of clients",
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
			co := listing.NewCoordinator(api, st.query, listing.WithLogger(a.log))
			co.Refresh()
			co.Wait()
			res := co.Current()
			co.Close()
			if err := a.printResult(st, res); err != nil {
				return err
			}
			if res.Err != nil {
				return sysError(fmt.Errorf("list clients: %w", res.Err))
			}
			return nil
		}),
	}
	lf.register(cmd)
	return cmd
}

func newClientsGetCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one client, field by field",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			rec, err := api.GetClient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if f.jsonMode {
				return a.printJSON(rec)
			}
			fmt.Fprintf(a.out, "ID: %s\n", rec.ID)
			if rec.Profile != "" {
				fmt.Fprintf(a.out, "Profile: %s\n", a.profileName(cmd.Context(), rec.Profile))
			}
			for _, b := range reg.Blocks() {
				fmt.Fprintf(a.out, "\n%s\n", b.Title(reg.Locale()))
				for _, fd := range b.Fields {
					d, err := codec.ToDisplay(fd, rec.Value(fd.Slug))
					if err != nil {
						return err
					}
					line := d.String()
					if d.Href != "" && d.Href != "#" {
						line += " <" + d.Href + ">"
					}
					fmt.Fprintf(a.out, "  %s: %s\n", fd.Label(reg.Locale()), line)
				}
			}
			return nil
		}),
	}
}

// profileName describes profile id by name and description, falling back
// to the bare id when the profiles cannot be read.
func (a *app) profileName(ctx context.Context, id string) string {
	api, err := a.client()
	if err != nil {
		return id
	}
	profiles, err := api.ListProfiles(ctx)
	if err != nil {
		a.log.Warn("listing profiles", "error", err)
		return id
	}
	for _, p := range profiles {
		if p.ID == id {
			if p.Description != "" {
				return fmt.Sprintf("%s (%s)", p.Name, p.Description)
			}
			return p.Name
		}
	}
	return id
}

// checkValues validates a full set of values, printing every problem.
func (a *app) checkValues(reg *schema.Registry, values map[string]any) error {
	res := validate.Build(reg.Fields(), validate.WithLocale(a.lang())).Validate(values)
	printValidation(a.errOut, res)
	if err := res.Err(); err != nil {
		return userError(err)
	}
	return nil
}

// resolveProfile looks ref up among the backend's profiles. An empty ref is
// the default profile.
func (a *app) resolveProfile(ctx context.Context, ref string) (types.Profile, error) {
	api, err := a.client()
	if err != nil {
		return types.Profile{}, err
	}
	profiles, err := api.ListProfiles(ctx)
	if err != nil {
		return types.Profile{}, fmt.Errorf("list profiles: %w", err)
	}
	p, err := types.FindProfile(profiles, ref)
	if err != nil {
		if ref == "" {
			err = fmt.Errorf("%w: pass --profile", err)
		}
		return types.Profile{}, userError(err)
	}
	return p, nil
}

func newClientsCreateCmd(f *rootFlags) *cobra.Command {
	var (
		sets    []string
		profile string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client from field=value assignments",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			values, err := parseAssignments(reg, sets)
			if err != nil {
				return err
			}
			if err := a.checkValues(reg, values); err != nil {
				return err
			}
			rec := types.NewRecord("", values)
			payload, err := codec.FullPayload(reg.Fields(), rec)
			if err != nil {
				return userError(err)
			}
			p, err := a.resolveProfile(cmd.Context(), profile)
			if err != nil {
				return err
			}
			payload.NetfreeProfile = p.ID
			api, err := a.client()
			if err != nil {
				return err
			}
			rec, err = api.CreateClient(cmd.Context(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created client %s\n", rec.ID)
			return nil
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	cmd.Flags().StringVar(&profile, "profile", "", "netfree profile id or name (default: the default profile)")
	return cmd
}

func newClientsUpdateCmd(f *rootFlags) *cobra.Command {
	var (
		sets    []string
		profile string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields or the profile of a client",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			if len(sets) == 0 && profile == "" {
				return userError(errors.New("nothing to update: pass --set field=value or --profile"))
			}
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			values, err := parseAssignments(reg, sets)
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			rec, err := api.GetClient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for slug, v := range values {
				rec.Set(slug, v)
			}
			if err := a.checkValues(reg, rec.Values); err != nil {
				return err
			}
			changed := rec.Dirty()
			if profile != "" {
				p, err := a.resolveProfile(cmd.Context(), profile)
				if err != nil {
					return err
				}
				rec.Profile = p.ID
				changed = append(changed, types.ProfileKey)
			}
			payload, err := codec.PartialPayload(reg.Fields(), rec)
			if err != nil {
				return userError(err)
			}
			if err := api.UpdateClient(cmd.Context(), rec.ID, payload); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated client %s (%s)\n", rec.ID, strings.Join(changed, ", "))
			return nil
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	cmd.Flags().StringVar(&profile, "profile", "", "move the client to this netfree profile (id or name)")
	return cmd
}

func newClientsDeleteCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			if err := api.DeleteClient(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted client %s\n", args[0])
			return nil
		}),
	}
}

func newClientsExportCmd(f *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download all clients as " + csvio.ExportFileName,
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			data, err := api.ExportClients(cmd.Context())
			if err != nil {
				return err
			}
			path, err := csvio.WriteExport(dir, data)
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(a.out, "Exported to %s\n", path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&dir, "out", ".", "directory to write "+csvio.ExportFileName+" into")
	return cmd
}

func newClientsImportCmd(f *rootFlags) *cobra.Command {
	var partial bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create clients from a CSV file",
		Long: "Create clients from a CSV file. Header cells are field slugs or labels.\n" +
			"Rows with missing required fields or bad values are reported; nothing is\n" +
			"sent unless every row is valid or --partial is given.",
		Args: cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return userError(err)
			}
			defer file.Close()

			res, err := csvio.Parse(file, reg, validate.WithLocale(a.lang()))
			if err != nil {
				return userError(err)
			}
			for _, e := range res.Errors {
				fmt.Fprintln(a.errOut, e.Error())
			}
			if len(res.Errors) > 0 && !partial {
				return userError(fmt.Errorf("%d invalid rows, nothing imported", len(res.Errors)))
			}
			if len(res.Rows) == 0 {
				return userError(errors.New("no rows to import"))
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			if err := api.ImportClients(cmd.Context(), res.Rows); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d clients\n", len(res.Rows))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&partial, "partial", false, "import the valid rows even when others are rejected")
	return cmd
}

// pickFilter resolves a --filter value: "" is the default group, "none"
// is no filter, anything else a group id.
func pickFilter(coll *filter.Collection, id string) (types.FilterGroup, bool, error) {
	if id == noFilter {
		return types.FilterGroup{}, false, nil
	}
	if err := coll.Apply(id); err != nil {
		return types.FilterGroup{}, false, userError(err)
	}
	g, ok := coll.Applied()
	return g, ok, nil
}
