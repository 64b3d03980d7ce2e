package schema

// Document is the root of a schemameta conversion
type Document struct {
	Comments Opt[string] `yaml:"comments,omitempty"`
	// Tables distinguishes an absent key from an empty sequence: only a
	// present key produces the tables wrapper element.
	Tables Opt[[]Table] `yaml:"tables,omitempty"`
}

// Table represents a table (or a remote table when RemoteCatalog/RemoteSchema are set)
type Table struct {
	Name          string       `yaml:"name"`
	Comments      Opt[string]  `yaml:"comments,omitempty"`
	RemoteCatalog Opt[string]  `yaml:"remoteCatalog,omitempty"`
	RemoteSchema  Opt[string]  `yaml:"remoteSchema,omitempty"`
	Columns       []Column     `yaml:"columns,omitempty"`
	PrimaryKey    Opt[string]  `yaml:"primaryKey,omitempty"` // single column name
	Indexes       []Index      `yaml:"indexes,omitempty"`
	ForeignKeys   []ForeignKey `yaml:"foreignKeys,omitempty"`
}

// Column represents a table column
type Column struct {
	Name         string      `yaml:"name"`
	Comments     Opt[string] `yaml:"comments,omitempty"`
	Type         Opt[string] `yaml:"type,omitempty"`
	Size         Opt[Scalar] `yaml:"size,omitempty"`
	Nullable     Opt[Scalar] `yaml:"nullable,omitempty"`
	AutoUpdated  Opt[Scalar] `yaml:"autoUpdated,omitempty"`
	DefaultValue Opt[Scalar] `yaml:"defaultValue,omitempty"`
	PrimaryKey   Opt[Scalar] `yaml:"primaryKey,omitempty"`

	// Relationship controls are emitted only when truthy, so they stay raw
	// scalars instead of Opt.
	DisableImpliedKeys         Scalar `yaml:"disableImpliedKeys,omitempty"`
	DisableDiagramAssociations Scalar `yaml:"disableDiagramAssociations,omitempty"`

	ForeignKey *ColumnForeignKey `yaml:"foreignKey,omitempty"`
}

// Index represents a table index
type Index struct {
	Name    string        `yaml:"name"`
	Unique  Opt[Scalar]   `yaml:"unique,omitempty"`
	Columns []IndexColumn `yaml:"columns,omitempty"`
}

// IndexColumn is one index member, written either as a bare name or as
// {name, ascending}
type IndexColumn struct {
	Name      string
	Ascending Scalar
}

// ForeignKey represents a table-level relationship
type ForeignKey struct {
	Name             Opt[string] `yaml:"name,omitempty"`
	Column           string      `yaml:"column"`
	Type             Opt[string] `yaml:"type,omitempty"`
	DeleteRule       Opt[string] `yaml:"deleteRule,omitempty"`
	UpdateRule       Opt[string] `yaml:"updateRule,omitempty"`
	ReferencesTable  string      `yaml:"referencesTable"`
	ReferencesColumn string      `yaml:"referencesColumn"`
}

// ColumnForeignKey represents a relationship declared on the column itself
type ColumnForeignKey struct {
	Table      string      `yaml:"table"`
	Column     string      `yaml:"column"`
	Type       Opt[string] `yaml:"type,omitempty"`
	DeleteRule Opt[string] `yaml:"deleteRule,omitempty"`
	UpdateRule Opt[string] `yaml:"updateRule,omitempty"`
}

// TableList returns the tables, or nil when the key was absent
func (d *Document) TableList() []Table {
	tables, _ := d.Tables.Get()
	return tables
}
