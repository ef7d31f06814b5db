package types

// Standard table names for Store.GetTable.
const (
	TableSettings        = "settings"
	TableSchemaSnapshots = "schema_snapshots"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableSettings,
	TableSchemaSnapshots,
}
