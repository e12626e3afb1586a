package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

var (
	streetlight = prefab.NewRef(prefab.KindProp, "Streetlight")
	lamp        = prefab.NewRef(prefab.KindProp, "Lamp")
	lantern     = prefab.NewRef(prefab.KindProp, "Lantern")
	bin         = prefab.NewRef(prefab.KindProp, "Bin")
)

func template(target, repl prefab.Ref) *replacement.Record {
	return &replacement.Record{Target: target, Replacement: repl, Probability: 100}
}

func TestNewPack_StampsRecords(t *testing.T) {
	p := NewPack("Lamps", []*replacement.Record{template(streetlight, lamp)})

	rec := p.Records[0]
	assert.Equal(t, replacement.TierPack, rec.Tier)
	assert.Equal(t, prefab.KindNetwork, rec.ParentKind)
	assert.Equal(t, "Lamps", rec.Pack)
	assert.Equal(t, prefab.NoLane, rec.Lane)
	assert.Same(t, rec, p.RecordFor(streetlight))
	assert.Nil(t, p.RecordFor(bin))
}

func TestLibrary_ConflictsOnlyWithAppliedPacks(t *testing.T) {
	// Arrange
	l := NewLibrary()
	require.NoError(t, l.Register(NewPack("Lamps", []*replacement.Record{template(streetlight, lamp)})))
	require.NoError(t, l.Register(NewPack("Lanterns", []*replacement.Record{template(streetlight, lantern)})))
	require.NoError(t, l.Register(NewPack("Bins", []*replacement.Record{template(bin, lamp)})))

	// Act & Assert
	assert.False(t, l.Conflicts("Lanterns"))

	l.MarkApplied("Lamps", nil)
	assert.True(t, l.Conflicts("Lanterns"))
	assert.False(t, l.Conflicts("Bins"))

	name, tmpl := l.Fallback("Lanterns", streetlight)
	assert.Equal(t, "Lamps", name)
	assert.Equal(t, lamp, tmpl.Replacement)

	l.MarkReverted("Lamps")
	assert.False(t, l.Conflicts("Lanterns"))
	_, tmpl = l.Fallback("Lanterns", streetlight)
	assert.Nil(t, tmpl)
}

func TestLibrary_AppliedPackCannotBeRedefined(t *testing.T) {
	l := NewLibrary()
	require.NoError(t, l.Register(NewPack("Lamps", nil)))
	l.MarkApplied("Lamps", nil)

	assert.Error(t, l.Register(NewPack("Lamps", nil)))
	assert.Error(t, l.Register(NewPack("", nil)))

	l.ResetApplied()
	assert.NoError(t, l.Register(NewPack("Lamps", nil)))
}

func TestLibrary_InstalledTracking(t *testing.T) {
	l := NewLibrary()
	require.NoError(t, l.Register(NewPack("Lamps", []*replacement.Record{template(streetlight, lamp)})))
	live := template(streetlight, lamp)

	l.SetInstalled("Lamps", streetlight, live)
	assert.Nil(t, l.Installed("Lamps", streetlight))

	l.MarkApplied("Lamps", map[prefab.Ref]*replacement.Record{})
	l.SetInstalled("Lamps", streetlight, live)
	assert.Same(t, live, l.Installed("Lamps", streetlight))

	installed := l.MarkReverted("Lamps")
	assert.Same(t, live, installed[streetlight])
	assert.False(t, l.IsApplied("Lamps"))
}

func TestPack_NotAllLoaded(t *testing.T) {
	rec := template(streetlight, lamp)
	p := NewPack("Lamps", []*replacement.Record{rec})
	assert.False(t, p.NotAllLoaded())

	rec.Unresolved = true
	assert.True(t, p.NotAllLoaded())
}
