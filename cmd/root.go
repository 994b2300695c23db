package cmd

type Context struct {
	Debug bool
}

var CLI struct {
	Debug bool `help:"Enable debug mode"`

	Worker        WorkerCmd        `cmd:"" default:"1"                            help:"Run the background maintenance worker"`
	Migrate       MigrateCmd       `cmd:"" help:"Run database migrations"`
	Reconcile     ReconcileCmd     `cmd:"" help:"Repair follow-graph counters"`
	RebuildFacets RebuildFacetsCmd `cmd:"" help:"Rebuild the catalog facet index"`
	Suggest       SuggestCmd       `cmd:"" help:"Record a suggestion for a missing catalog item"`
}
