package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/bootstrap"
	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/intelligence/alias"
	"github.com/turtacn/chemsafe/internal/testutil"
	"github.com/turtacn/chemsafe/internal/testutil/lookupmock"
	"github.com/turtacn/chemsafe/pkg/errors"
)

func sampleReport() *lookup.ChemicalReport {
	return &lookup.ChemicalReport{
		Query:       "acetone",
		MainName:    "Acetone",
		DisplayName: "Acetone",
		EntityID:    "id#Acetone",
		MatchTier:   "exact_name",
		MatchedName: "Acetone",
		Sections: []chemical.Section{
			{Title: "Physical hazards", Content: []string{"Highly flammable liquid"}},
		},
		Procedures: []chemical.StepGroup{
			{Category: "Fire", Steps: []string{"Use alcohol-resistant foam"}},
		},
	}
}

func TestLookupCmd_Text(t *testing.T) {
	svc := &lookupmock.MockService{}
	svc.On("Lookup", mock.Anything, lookup.Query{Name: "acetone", EmergencyType: "Fire"}).Return(sampleReport(), nil)
	closed := 0

	out, _, err := execute(t, mockOpener(svc, nil, &closed), "lookup", "acetone", "--type", "Fire")

	require.NoError(t, err)
	assert.Contains(t, out, "Acetone")
	assert.Contains(t, out, "Physical hazards")
	assert.Contains(t, out, "Highly flammable liquid")
	assert.Contains(t, out, "- Use alcohol-resistant foam")
	assert.Equal(t, 1, closed)
	svc.AssertExpectations(t)
}

func TestLookupCmd_JSONSectionsOnly(t *testing.T) {
	svc := &lookupmock.MockService{}
	svc.On("Lookup", mock.Anything, lookup.Query{Name: "acetone", ID: "id#Acetone"}).Return(sampleReport(), nil)

	out, _, err := execute(t, mockOpener(svc, nil, nil), "lookup", "acetone", "--id", "id#Acetone", "--sections-only", "-o", "json")
	require.NoError(t, err)

	var got lookup.ChemicalReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "id#Acetone", got.EntityID)
	assert.Len(t, got.Sections, 1)
	assert.Empty(t, got.Procedures)
}

func TestLookupCmd_NotFound(t *testing.T) {
	svc := &lookupmock.MockService{}
	notFound := errors.New(errors.ErrCodeChemicalNotFound, "chemical not found")
	svc.On("Lookup", mock.Anything, mock.Anything).Return(nil, notFound)
	closed := 0

	out, _, err := execute(t, mockOpener(svc, nil, &closed), "lookup", "kryptite")

	assert.True(t, errors.IsCode(err, errors.ErrCodeChemicalNotFound))
	assert.Empty(t, out)
	assert.Equal(t, 1, closed, "service released on error")
}

func TestLookupCmd_OpenFailure(t *testing.T) {
	open := func(_ context.Context, _ *CLIContext, _ bootstrap.Options) (lookup.Service, func() error, error) {
		return nil, nil, stderrors.New("graph store down")
	}
	_, _, err := execute(t, open, "lookup", "acetone")
	assert.EqualError(t, err, "graph store down")
}

func TestProceduresCmd_Table(t *testing.T) {
	svc := &lookupmock.MockService{}
	svc.On("Lookup", mock.Anything, lookup.Query{Name: "acetone", EmergencyType: "Fire"}).Return(sampleReport(), nil)

	out, _, err := execute(t, mockOpener(svc, nil, nil), "procedures", "acetone", "-t", "Fire", "-o", "table")

	require.NoError(t, err)
	assert.Contains(t, out, "Fire")
	assert.Contains(t, out, "foam")
	assert.NotContains(t, out, "Highly flammable")
}

func TestProceduresCmd_RequiresName(t *testing.T) {
	_, _, err := execute(t, mockOpener(&lookupmock.MockService{}, nil, nil), "procedures")
	assert.Error(t, err)
}

func TestAliasesCmd(t *testing.T) {
	svc := &lookupmock.MockService{}
	svc.On("GetMainName", "propanone").Return("Acetone")
	svc.On("GetAllPossibleNames", "propanone").Return([]string{"Acetone", "propanone", "dimethyl ketone"})

	out, _, err := execute(t, mockOpener(svc, nil, nil), "aliases", "  propanone ", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Name     string   `json:"name"`
		MainName string   `json:"main_name"`
		Names    []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "propanone", got.Name)
	assert.Equal(t, "Acetone", got.MainName)
	assert.Len(t, got.Names, 3)
}

func TestReloadCmd_PublishesAndReports(t *testing.T) {
	svc := &lookupmock.MockService{}
	svc.On("Reload", mock.Anything).Return(nil)
	svc.On("Status").Return(lookup.Status{Chemicals: 12, Aliases: alias.Stats{Rows: 40}})
	var opts bootstrap.Options

	out, _, err := execute(t, mockOpener(svc, &opts, nil), "reload")

	require.NoError(t, err)
	assert.True(t, opts.Publish)
	assert.False(t, opts.Consume)
	assert.Contains(t, out, "reloaded 12 chemicals, 40 alias rows")
}

func TestReloadCmd_Failure(t *testing.T) {
	svc := &lookupmock.MockService{}
	svc.On("Reload", mock.Anything).Return(errors.New(errors.ErrCodeReloadFailed, "alias rebuild failed"))

	_, _, err := execute(t, mockOpener(svc, nil, nil), "reload")

	assert.True(t, errors.IsCode(err, errors.ErrCodeReloadFailed))
	svc.AssertNotCalled(t, "Status")
}

func TestStatusCmd(t *testing.T) {
	svc := &lookupmock.MockService{}
	svc.On("Status").Return(lookup.Status{
		InstanceID:  "node-1",
		GraphReady:  true,
		GraphSource: "file:/srv/graph.jsonld",
		Chemicals:   3,
		Aliases:     alias.Stats{Rows: 9, LastError: "redis: connection refused"},
	})

	out, _, err := execute(t, mockOpener(svc, nil, nil), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "node-1")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "redis: connection refused")

	out, _, err = execute(t, mockOpener(svc, nil, nil), "status", "-o", "json")
	require.NoError(t, err)
	var st lookup.Status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 3, st.Chemicals)
}

func TestMigrateCmd_RequiresPostgres(t *testing.T) {
	_, _, err := execute(t, nil, "migrate", "version")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestMigrateDownCmd_RejectsNonInteger(t *testing.T) {
	_, _, err := execute(t, nil, "migrate", "down", "two")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestGraphValidateCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemicals.jsonld")
	require.NoError(t, os.WriteFile(path, []byte(testutil.SampleGraphJSON), 0o644))

	out, _, err := execute(t, nil, "graph", "validate", path, "-o", "json")
	require.NoError(t, err)

	var got struct {
		Entities  int `json:"entities"`
		Chemicals int `json:"chemicals"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Positive(t, got.Chemicals)
	assert.GreaterOrEqual(t, got.Entities, got.Chemicals)
}

func TestGraphValidateCmd_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonld")
	require.NoError(t, os.WriteFile(path, []byte(`{"@graph": [`), 0o644))

	_, _, err := execute(t, nil, "graph", "validate", path)
	assert.Error(t, err)
}

func TestGraphValidateCmd_MissingFile(t *testing.T) {
	_, _, err := execute(t, nil, "graph", "validate", filepath.Join(t.TempDir(), "absent.jsonld"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphUnavailable))
}
