package ddlkit_test

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlkit"
)

func TestColumnsRender(t *testing.T) {
	cols := ddlkit.NewColumns(ddlkit.MySQL)
	cols.Int("id").Unsigned().AutoIncrement()
	cols.Varchar("name", 64).Default("")
	cols.Decimal("balance", 12, 2)
	cols.Enum("role", "admin", "member").Default("member")

	got, err := cols.Render()
	require.NoError(t, err)
	assert.Equal(t,
		" `id` int unsigned AUTO_INCREMENT NOT NULL,\n"+
			" `name` varchar(64) NOT NULL DEFAULT '',\n"+
			" `balance` decimal(12,2) NOT NULL,\n"+
			" `role` enum('admin', 'member') NOT NULL DEFAULT 'member'",
		got)
	assert.Equal(t, 4, cols.Len())
}

func TestColumnsFactoriesReturnRegisteredColumn(t *testing.T) {
	cols := ddlkit.NewColumns(nil)
	c := cols.BigInt("id")
	c.Unsigned()

	all := cols.All()
	require.Len(t, all, 1)
	assert.Same(t, c, all[0])
	assert.Equal(t, ddlkit.TypeBigInt, all[0].TypeName())

	got, err := cols.Render()
	require.NoError(t, err)
	assert.Equal(t, " `id` bigint unsigned NOT NULL", got)
}

func TestColumnsFactoryTypes(t *testing.T) {
	cols := ddlkit.NewColumns(ddlkit.MySQL)
	cases := map[*ddlkit.Column]string{
		cols.TinyInt("a"):         " `a` tinyint NOT NULL",
		cols.SmallInt("b"):        " `b` smallint NOT NULL",
		cols.MediumInt("c"):       " `c` mediumint NOT NULL",
		cols.Bit("d").Length(1):   " `d` bit(1) NOT NULL",
		cols.Float("e", 7, 4):     " `e` float(7,4) NOT NULL",
		cols.Double("f"):          " `f` double NOT NULL",
		cols.Char("g", 3):         " `g` char(3) NOT NULL",
		cols.TinyText("h"):        " `h` tinytext NOT NULL",
		cols.Text("i"):            " `i` text NOT NULL",
		cols.MediumText("j"):      " `j` mediumtext NOT NULL",
		cols.LongText("k"):        " `k` longtext NOT NULL",
		cols.Binary("l", 16):      " `l` binary(16) NOT NULL",
		cols.Varbinary("m", 255):  " `m` varbinary(255) NOT NULL",
		cols.Blob("n"):            " `n` blob NOT NULL",
		cols.Set("o", "x", "y"):   " `o` set('x', 'y') NOT NULL",
		cols.Date("p"):            " `p` date NOT NULL",
		cols.Time("q").Length(3):  " `q` time(3) NOT NULL",
		cols.Datetime("r"):        " `r` datetime NOT NULL",
		cols.Timestamp("s"):       " `s` timestamp NOT NULL",
		cols.Year("t"):            " `t` year NOT NULL",
		cols.JSON("u").Nullable(): " `u` json NULL",
		cols.Geometry("v"):        " `v` geometry NOT NULL",
		cols.Point("w"):           " `w` point NOT NULL",
	}
	for c, want := range cases {
		got, err := c.Render()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, len(cases), cols.Len())
}

func TestColumnsRenderAnnotatesFailingColumn(t *testing.T) {
	cols := ddlkit.NewColumns(ddlkit.MySQL)
	cols.Int("id")
	cols.Add("broken", "")

	_, err := cols.Render()
	require.Error(t, err)
	assert.True(t, ddlkit.IsConfiguration(err))
	assert.ErrorIs(t, err, ddlkit.ErrTypeEmpty)
	assert.EqualError(t, err, "column broken: type is empty")
}

func TestColumnsRenderEmpty(t *testing.T) {
	got, err := ddlkit.NewColumns(ddlkit.MySQL).Render()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndexesFactories(t *testing.T) {
	idx := ddlkit.NewIndexes(ddlkit.MySQL)
	pk := idx.PrimaryKey("id")
	uq := idx.UniqueKey("email").Name("uq_email")
	key := idx.Key("created_at")
	ft := idx.FulltextKey("bio")
	sp := idx.SpatialKey("home")
	fk := idx.ForeignKey("team_id").References("teams", "id").OnDelete(ddlkit.Cascade)

	all := idx.All()
	require.Len(t, all, 6)
	for i, want := range []*ddlkit.Index{pk, uq, key, ft, sp, fk} {
		assert.Same(t, want, all[i])
	}

	got, err := idx.Render()
	require.NoError(t, err)
	assert.Equal(t,
		" PRIMARY KEY (`id`),\n"+
			" UNIQUE KEY `uq_email` (`email`),\n"+
			" KEY (`created_at`),\n"+
			" FULLTEXT KEY (`bio`),\n"+
			" SPATIAL KEY (`home`),\n"+
			" FOREIGN KEY (`team_id`) REFERENCES `teams` (`id`) ON DELETE CASCADE",
		got)
}

func TestIndexesCall(t *testing.T) {
	idx := ddlkit.NewIndexes(ddlkit.MySQL)

	for method, kind := range map[string]ddlkit.KeyKind{
		"key":         ddlkit.KindKey,
		"primaryKey":  ddlkit.KindPrimaryKey,
		"uniqueKey":   ddlkit.KindUniqueKey,
		"fulltextKey": ddlkit.KindFulltextKey,
		"foreignKey":  ddlkit.KindForeignKey,
		"spatialKey":  ddlkit.KindSpatialKey,
	} {
		got, err := idx.Call(method, "a", "b")
		require.NoError(t, err, method)
		assert.Equal(t, kind, got.Kind())
		assert.Equal(t, []string{"a", "b"}, got.Columns())
	}
	assert.Equal(t, 6, idx.Len())

	_, err := idx.Call("checkKey", "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotFound))
	assert.Contains(t, err.Error(), `"checkKey"`)
	assert.Equal(t, 6, idx.Len(), "failed call must not register anything")
}

func TestIndexesRenderAnnotatesFailingKey(t *testing.T) {
	idx := ddlkit.NewIndexes(ddlkit.MySQL)
	idx.PrimaryKey("id")
	idx.ForeignKey("user_id")

	_, err := idx.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, ddlkit.ErrReferencesNotSet)
	assert.Contains(t, err.Error(), "FOREIGN KEY (user_id)")
}

func TestIndexDefinitionSingleSlot(t *testing.T) {
	def := ddlkit.NewIndexDefinition(ddlkit.MySQL)

	_, err := def.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, ddlkit.ErrNoKeyConfigured)
	assert.True(t, ddlkit.IsConfiguration(err))
	assert.Nil(t, def.Index())

	def.UniqueKey("email")
	fk := def.ForeignKey("user_id").Constraint("fk_user").References("users", "id")
	assert.Same(t, fk, def.Index(), "the last factory call replaces the slot")

	got, err := def.Render()
	require.NoError(t, err)
	assert.Equal(t, " CONSTRAINT `fk_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`)", got)

	_, err = def.Call("indexKey", "x")
	assert.True(t, errors.IsNotFound(err))
	assert.Same(t, fk, def.Index())
}

func TestZeroValueContainers(t *testing.T) {
	var cols ddlkit.Columns
	cols.Int("id")

	var idx ddlkit.Indexes
	idx.PrimaryKey("id")
	_, err := idx.Call("key", "created_at")
	require.NoError(t, err)

	got, err := idx.Render()
	require.NoError(t, err)
	assert.Equal(t, " PRIMARY KEY (`id`),\n KEY (`created_at`)", got)

	var def ddlkit.IndexDefinition
	def.UniqueKey("email")
	got, err = def.Render()
	require.NoError(t, err)
	assert.Equal(t, " UNIQUE KEY (`email`)", got)

	got, err = cols.Render()
	require.NoError(t, err)
	assert.Equal(t, " `id` int NOT NULL", got)
}
