package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/internal/filter"
	"github.com/mesh-intelligence/clientdesk/internal/listing"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/internal/validate"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func newFiltersCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage saved filter groups",
	}
	cmd.AddCommand(
		newFiltersListCmd(f),
		newFiltersOperatorsCmd(f),
		newFiltersCreateCmd(f),
		newFiltersEditCmd(f),
		newFiltersDeleteCmd(f),
		newFiltersDefaultCmd(f),
		newFiltersClearDefaultCmd(f),
		newFiltersTestCmd(f),
	)
	return cmd
}

func newFiltersTestCmd(f *rootFlags) *cobra.Command {
	lf := &listFlags{}
	cmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Preview a saved filter against one page of clients",
		Long: "Fetch one unfiltered page of clients and evaluate the filter group on it\n" +
			"locally. Nothing is saved; use it to check a group before making it the\n" +
			"default.",
		Args: cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			lf.filter = noFilter
			st, err := a.prepareListing(cmd.Context(), lf)
			if err != nil {
				return err
			}
			coll, err := a.collection(cmd.Context())
			if err != nil {
				return err
			}
			g, ok := coll.Get(args[0])
			if !ok {
				return userError(fmt.Errorf("%w: %q", types.ErrFilterNotFound, args[0]))
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
			if res.Err != nil {
				return sysError(fmt.Errorf("list clients: %w", res.Err))
			}

			matched, err := filter.Select(g, res.Page.Data, st.reg)
			if err != nil {
				return userError(fmt.Errorf("filter %s: %w", g.Name, err))
			}
			listing.Sort(matched, st.sort, st.reg)
			if f.jsonMode {
				if matched == nil {
					matched = []types.EditableRecord{}
				}
				return a.printJSON(map[string]any{
					"filter":  g.ID,
					"page":    res.Query.Page + 1,
					"scanned": len(res.Page.Data),
					"data":    matched,
				})
			}
			if err := printRecords(a.out, st.reg, matched); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d of %d clients on page %d match %s\n",
				len(matched), len(res.Page.Data), res.Query.Page+1, g.Name)
			return nil
		}),
	}
	cmd.Flags().IntVar(&lf.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&lf.pageSize, "page-size", 0, "rows per page (default from config)")
	cmd.Flags().StringArrayVar(&lf.search, "search", nil, "search term as field=term (repeatable)")
	cmd.Flags().StringVar(&lf.sort, "sort", "", "sort the matches by field; prefix with - for descending")
	return cmd
}

func newFiltersListCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved filter groups",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			groups, err := api.ListFilterGroups(cmd.Context())
			if err != nil {
				return err
			}
			if f.jsonMode {
				if groups == nil {
					groups = []types.FilterGroup{}
				}
				return a.printJSON(groups)
			}
			if len(groups) == 0 {
				fmt.Fprintln(a.out, "No saved filters")
				return nil
			}
			for _, g := range groups {
				mark := " "
				if g.IsDefault {
					mark = "*"
				}
				fmt.Fprintf(a.out, "%s %s  %s\n", mark, g.ID, g.Name)
				and, or := g.Buckets()
				printConditions(a, "AND", and)
				printConditions(a, "OR", or)
			}
			return nil
		}),
	}
}

func printConditions(a *app, bucket string, conds []types.FilterCondition) {
	for _, c := range conds {
		line := fmt.Sprintf("    %-3s %s %s", bucket, c.AttrName, c.Condition)
		if !c.Condition.Unary() && c.Value != "" {
			line += " " + c.Value
		}
		fmt.Fprintln(a.out, line)
	}
}

// dataTypes lists the declared types in catalog order.
var dataTypes = []types.DataType{
	types.DataTypeText, types.DataTypeEmail, types.DataTypeURL, types.DataTypePhone,
	types.DataTypeNumber, types.DataTypeCurrency, types.DataTypeDate, types.DataTypeDatetime,
	types.DataTypeSelect, types.DataTypeCheckbox,
}

func newFiltersOperatorsCmd(f *rootFlags) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List the operators each data type accepts",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			dts := dataTypes
			if only != "" {
				dt := types.DataType(only)
				if _, err := dt.Class(); err != nil {
					return userError(err)
				}
				dts = []types.DataType{dt}
			}
			if f.jsonMode {
				out := make(map[string][]types.OperatorOption, len(dts))
				for _, dt := range dts {
					out[string(dt)] = cat.ValidOperators(dt)
				}
				return a.printJSON(out)
			}
			for _, dt := range dts {
				ops := cat.ValidOperators(dt)
				if len(ops) == 0 {
					continue
				}
				fmt.Fprintf(a.out, "%s:\n", dt)
				for _, op := range ops {
					fmt.Fprintf(a.out, "  %-14s %s\n", op.Condition, op.Label)
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&only, "type", "", "only this data type")
	return cmd
}

// conditionFlags are the condition arguments shared by create and edit.
type conditionFlags struct {
	name string
	and  []string
	or   []string
}

func (cf *conditionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cf.name, "name", "", "filter group name")
	cmd.Flags().StringArrayVar(&cf.and, "and", nil, "condition field:operator[:value] that must hold (repeatable)")
	cmd.Flags().StringArrayVar(&cf.or, "or", nil, "condition field:operator[:value] of which one must hold (repeatable)")
}

func (cf *conditionFlags) any() bool { return len(cf.and)+len(cf.or) > 0 }

// addConditions appends the flag conditions to d.
func (cf *conditionFlags) addConditions(reg *schema.Registry, d *filter.Draft) error {
	for _, group := range []struct {
		bucket types.Bucket
		args   []string
	}{{types.BucketAnd, cf.and}, {types.BucketOr, cf.or}} {
		for _, arg := range group.args {
			if err := addCondition(reg, d, group.bucket, arg); err != nil {
				return userError(fmt.Errorf("condition %q: %w", arg, err))
			}
		}
	}
	return nil
}

func addCondition(reg *schema.Registry, d *filter.Draft, bucket types.Bucket, arg string) error {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) < 2 {
		return errors.New("expected field:operator[:value]")
	}
	fd, ok := reg.Resolve(strings.TrimSpace(parts[0]))
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownField, parts[0])
	}
	c, err := d.AddCondition(bucket)
	if err != nil {
		return err
	}
	if err := d.SetAttr(c.ID, fd.Slug); err != nil {
		return err
	}
	if err := d.SetOperator(c.ID, types.Operator(strings.TrimSpace(parts[1]))); err != nil {
		return err
	}
	if len(parts) == 3 {
		return d.SetValue(c.ID, fmt.Sprint(inputValue(fd, parts[2])))
	}
	return nil
}

// build validates d, printing problems and warnings, and returns the group.
func (a *app) build(d *filter.Draft) (types.FilterGroup, error) {
	printValidation(a.errOut, d.Validate())
	g, err := d.Build()
	if err != nil {
		return types.FilterGroup{}, userError(err)
	}
	return g, nil
}

// draftDeps loads what a draft needs.
func (a *app) draftDeps(ctx context.Context) (*schema.Registry, *filter.Catalog, error) {
	reg, err := a.registry(ctx)
	if err != nil {
		return nil, nil, err
	}
	cat, err := a.catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	return reg, cat, nil
}

func newFiltersCreateCmd(f *rootFlags) *cobra.Command {
	cf := &conditionFlags{}
	var makeDefault bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a new filter group",
		Example: `  clientdesk filters create --name "Tel Aviv leads" \
    --and "city:equals:Tel Aviv" --or status:equals:Lead --or status:equals:New`,
		Args: cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			reg, cat, err := a.draftDeps(cmd.Context())
			if err != nil {
				return err
			}
			d := filter.NewDraft(reg, cat, validate.WithLocale(a.lang()))
			d.SetName(cf.name)
			if err := cf.addConditions(reg, d); err != nil {
				return err
			}
			g, err := a.build(d)
			if err != nil {
				return err
			}
			coll, err := a.collection(cmd.Context())
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			saved, err := api.CreateFilterGroup(cmd.Context(), g)
			if err != nil {
				return err
			}
			coll.Replace(saved)
			fmt.Fprintf(a.out, "Created filter %s (%s)\n", saved.ID, saved.Name)
			if makeDefault {
				if err := coll.SetDefault(cmd.Context(), saved.ID); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Filter %s is now the default\n", saved.ID)
			}
			return nil
		}),
	}
	cf.register(cmd)
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default filter")
	return cmd
}

func newFiltersEditCmd(f *rootFlags) *cobra.Command {
	cf := &conditionFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a filter group or replace its conditions",
		Long: "Rename a filter group or replace its conditions. Passing any --and or --or\n" +
			"replaces every saved condition.",
		Args: cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			if cf.name == "" && !cf.any() {
				return userError(errors.New("nothing to change: pass --name, --and or --or"))
			}
			reg, cat, err := a.draftDeps(cmd.Context())
			if err != nil {
				return err
			}
			coll, err := a.collection(cmd.Context())
			if err != nil {
				return err
			}
			g, ok := coll.Get(args[0])
			if !ok {
				return userError(fmt.Errorf("%w: %q", types.ErrFilterNotFound, args[0]))
			}
			d := filter.EditDraft(reg, cat, g, validate.WithLocale(a.lang()))
			if cf.name != "" {
				d.SetName(cf.name)
			}
			if cf.any() {
				for _, c := range d.Conditions() {
					if err := d.Remove(c.ID); err != nil {
						return err
					}
				}
				if err := cf.addConditions(reg, d); err != nil {
					return err
				}
			}
			g, err = a.build(d)
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			saved, err := api.UpdateFilterGroup(cmd.Context(), g)
			if err != nil {
				return err
			}
			coll.Replace(saved)
			fmt.Fprintf(a.out, "Updated filter %s (%s)\n", saved.ID, saved.Name)
			return nil
		}),
	}
	cf.register(cmd)
	return cmd
}

func newFiltersDeleteCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a filter group",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			if err := api.DeleteFilterGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted filter %s\n", args[0])
			return nil
		}),
	}
}

func newFiltersDefaultCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "default <id>",
		Short: "Make a filter group the default for listings",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			coll, err := a.collection(cmd.Context())
			if err != nil {
				return err
			}
			if err := coll.SetDefault(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, types.ErrFilterNotFound) {
					return userError(err)
				}
				return err
			}
			fmt.Fprintf(a.out, "Filter %s is now the default\n", args[0])
			return nil
		}),
	}
}

func newFiltersClearDefaultCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-default",
		Short: "Stop applying a default filter group",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			coll, err := a.collection(cmd.Context())
			if err != nil {
				return err
			}
			if err := coll.ClearDefault(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "No default filter")
			return nil
		}),
	}
}
