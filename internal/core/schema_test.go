package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSameDefinition(t *testing.T) {
	base := &Column{Name: "id", Type: "int", Nullable: false, Extra: ExtraAutoIncrement}

	t.Run("identical definitions match regardless of name", func(t *testing.T) {
		other := &Column{Name: "uid", Type: "int", Nullable: false, Extra: ExtraAutoIncrement}
		assert.True(t, SameDefinition(base, other))
	})

	t.Run("type is an opaque token", func(t *testing.T) {
		other := base.Clone()
		other.Type = "int(11)"
		assert.False(t, SameDefinition(base, other))
	})

	t.Run("nullability differs", func(t *testing.T) {
		other := base.Clone()
		other.Nullable = true
		assert.False(t, SameDefinition(base, other))
	})

	t.Run("extra differs", func(t *testing.T) {
		other := base.Clone()
		other.Extra = ExtraNone
		assert.False(t, SameDefinition(base, other))
	})

	t.Run("default nil vs literal", func(t *testing.T) {
		a := &Column{Name: "n", Type: "varchar(50)", Nullable: true}
		b := a.Clone()
		b.Default = strPtr("x")
		assert.False(t, SameDefinition(a, b))
	})

	t.Run("equal literal defaults", func(t *testing.T) {
		a := &Column{Name: "n", Type: "varchar(50)", Nullable: true, Default: strPtr("x")}
		b := &Column{Name: "n", Type: "varchar(50)", Nullable: true, Default: strPtr("x")}
		assert.True(t, SameDefinition(a, b))
	})

	t.Run("empty-string default differs from no default", func(t *testing.T) {
		a := &Column{Name: "n", Type: "varchar(50)", Nullable: true, Default: strPtr("")}
		b := &Column{Name: "n", Type: "varchar(50)", Nullable: true}
		assert.False(t, SameDefinition(a, b))
	})
}

func TestSchemaLookups(t *testing.T) {
	s := &Schema{}
	s.AddTable(&Table{Name: "users", Columns: []*Column{
		{Name: "id", Type: "int", Extra: ExtraAutoIncrement},
		{Name: "name", Type: "varchar(50)", Nullable: true},
	}})

	t.Run("table lookup is case-sensitive", func(t *testing.T) {
		require.NotNil(t, s.Table("users"))
		assert.Nil(t, s.Table("Users"))
		assert.True(t, s.HasTable("users"))
		assert.False(t, s.HasTable("orders"))
	})

	t.Run("column lookup is case-sensitive", func(t *testing.T) {
		users := s.Table("users")
		require.NotNil(t, users.Column("id"))
		assert.Nil(t, users.Column("ID"))
	})

	t.Run("auto increment helpers", func(t *testing.T) {
		users := s.Table("users")
		ai := users.AutoIncrementColumn()
		require.NotNil(t, ai)
		assert.Equal(t, "id", ai.Name)
		assert.Equal(t, 1, users.CountAutoIncrement())
	})
}

func TestTableMutators(t *testing.T) {
	table := &Table{Name: "t", Columns: []*Column{
		{Name: "a", Type: "int"},
		{Name: "b", Type: "int"},
		{Name: "c", Type: "int"},
	}}

	t.Run("remove keeps order", func(t *testing.T) {
		work := table.Clone()
		require.True(t, work.RemoveColumn("b"))
		require.Len(t, work.Columns, 2)
		assert.Equal(t, "a", work.Columns[0].Name)
		assert.Equal(t, "c", work.Columns[1].Name)
		assert.False(t, work.RemoveColumn("missing"))
	})

	t.Run("replace swaps in place", func(t *testing.T) {
		work := table.Clone()
		require.True(t, work.ReplaceColumn("b", &Column{Name: "b", Type: "bigint"}))
		assert.Equal(t, "bigint", work.Columns[1].Type)
		assert.False(t, work.ReplaceColumn("missing", &Column{Name: "missing", Type: "int"}))
	})
}

func TestClone(t *testing.T) {
	s := &Schema{}
	s.AddTable(&Table{Name: "users", Columns: []*Column{
		{Name: "id", Type: "int", Default: strPtr("0")},
	}})

	clone := s.Clone()
	clone.Tables[0].Name = "accounts"
	clone.Tables[0].Columns[0].Type = "bigint"
	*clone.Tables[0].Columns[0].Default = "1"

	assert.Equal(t, "users", s.Tables[0].Name)
	assert.Equal(t, "int", s.Tables[0].Columns[0].Type)
	assert.Equal(t, "0", *s.Tables[0].Columns[0].Default)
}

func TestColumnString(t *testing.T) {
	c := &Column{Name: "id", Type: "int", Extra: ExtraAutoIncrement}
	assert.Equal(t, "int NOT NULL AUTO_INCREMENT", c.String())

	c = &Column{Name: "name", Type: "varchar(50)", Nullable: true, Default: strPtr("anon")}
	assert.Equal(t, `varchar(50) NULL DEFAULT "anon"`, c.String())
}

func TestIsValidExtra(t *testing.T) {
	assert.True(t, IsValidExtra(""))
	assert.True(t, IsValidExtra("auto_increment"))
	assert.False(t, IsValidExtra("AUTO_INCREMENT"))
	assert.False(t, IsValidExtra("on update CURRENT_TIMESTAMP"))
}
