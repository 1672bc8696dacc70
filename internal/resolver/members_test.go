package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scopegen/internal/config"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

const membersManifest = `
package: example.com/app
annotations:
  - {name: Primary, qualifier: true}
types:
  - name: Store
    kind: interface
  - name: Holder
    fields:
      - {name: Store, type: Store, annotations: [inject, Primary]}
      - {name: Deferred, type: "Lazy[Store]", annotations: [inject]}
      - {name: secret, type: Store, visibility: private, annotations: [inject]}
      - {name: Fixed, type: Store, final: true, annotations: [inject]}
      - {name: Count, type: int, annotations: [inject]}
      - {name: Nested, type: "Lazy[Box[Store]]", annotations: [inject]}
      - {name: Ignored, type: Store}
    methods:
      - name: setUp
        visibility: package
        annotations: [inject]
        params:
          - {name: s, type: Store}
          - {name: p, type: "Provider[Store]", annotations: [{name: named, value: backup}]}
      - {name: Loud, annotations: [inject]}
      - {name: Quiet, annotations: [inject, {name: suppress, value: visible}]}
      - {name: hidden, visibility: private, annotations: [inject]}
      - name: broken
        visibility: package
        annotations: [inject]
        params:
          - {name: p, type: "Provider[Box[Store]]"}
      - {name: Plain}
  - name: Secretive
    visibility: private
    fields:
      - {name: Store, type: Store, annotations: [inject]}
  - name: Parent
    methods:
      - {name: start, visibility: package, annotations: [inject]}
  - name: Child
    super: Parent
    methods:
      - {name: start, visibility: package, annotations: [inject]}
      - {name: stop, visibility: package}
`

func TestCollectMembers(t *testing.T) {
	f := newFixture(t, membersManifest, nil)

	fields, methods := f.resolver.CollectMembers(f.typ(t, "Holder"))

	require.Len(t, fields, 2)
	assert.Equal(t, "Store", fields[0].Name)
	assert.Equal(t, models.RetrievalInstance, fields[0].Requirement.Retrieval)
	assert.Equal(t, app+"Primary", fields[0].Requirement.QualifierValue())
	assert.Equal(t, "Deferred", fields[1].Name)
	assert.Equal(t, models.RetrievalDeferred, fields[1].Requirement.Retrieval)
	assert.Equal(t, app+"Store", fields[1].Requirement.Target.Name)

	var names []string
	for _, m := range methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"setUp", "Loud", "Quiet"}, names)

	setUp := methods[0]
	require.Len(t, setUp.Parameters, 2)
	assert.Equal(t, models.RetrievalFactory, setUp.Parameters[1].Retrieval)
	assert.Equal(t, "backup", setUp.Parameters[1].QualifierValue())

	assert.Len(t, f.sink.ByCode(errors.PrivateElementCode), 2)
	assert.Len(t, f.sink.ByCode(errors.FinalFieldCode), 1)
	assert.Len(t, f.sink.ByCode(errors.UnsupportedFieldTypeCode), 1)
	assert.Len(t, f.sink.ByCode(errors.HandleGenericsCode), 2)

	visibility := f.sink.ByCode(errors.MethodVisibilityCode)
	require.Len(t, visibility, 1, "suppressed and package methods do not warn")
	assert.Equal(t, errors.SeverityWarning, visibility[0].Severity)
	assert.Equal(t, app+"Holder#Loud", visibility[0].Element)
}

func TestCollectMembers_VisibilityPolicy(t *testing.T) {
	opts := config.Default()
	opts.CrashWhenInjectedMethodIsNotPackageVisible = true
	f := newFixture(t, membersManifest, opts)

	f.resolver.CollectMembers(f.typ(t, "Holder"))

	visibility := f.sink.ByCode(errors.MethodVisibilityCode)
	require.Len(t, visibility, 1)
	assert.Equal(t, errors.SeverityError, visibility[0].Severity)
}

func TestCollectMembers_PrivateEnclosingType(t *testing.T) {
	f := newFixture(t, membersManifest, nil)

	fields, _ := f.resolver.CollectMembers(f.typ(t, "Secretive"))
	assert.Empty(t, fields)
	assert.Len(t, f.sink.ByCode(errors.PrivateEnclosingTypeCode), 1)
}

func TestCollectMembers_KeepsShadowingMethods(t *testing.T) {
	f := newFixture(t, membersManifest, nil)
	child := f.typ(t, "Child")

	fields, methods := f.resolver.CollectMembers(child)
	assert.Empty(t, fields)
	require.Len(t, methods, 1, "the ancestor injector only reaches the embedded method")
	assert.Equal(t, "start", methods[0].Name)
	assert.Empty(t, f.codes())

	notes := f.sink.ByCode(errors.ShadowedMethodCode)
	require.Len(t, notes, 1)
	assert.Equal(t, errors.SeverityNote, notes[0].Severity)
	assert.Contains(t, notes[0].Message, app+"Parent")

	assert.True(t, f.resolver.hasOwnInjectedMembers(child))
	assert.True(t, f.resolver.hasOwnInjectedMembers(f.typ(t, "Parent")))

	ref := f.resolver.NearestInjectedAncestor(child, false)
	require.NotNil(t, ref)
	assert.Equal(t, app+"Parent", ref.Owner)
	assert.Equal(t, []models.EmbedStep{{Field: "Parent"}}, ref.Path)
}
