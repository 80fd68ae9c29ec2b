package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"unique_key", "unique_key"},
		{"Created Date", "created_date"},
		{"  Complaint_Type  ", "complaint_type"},
		{"__Resolution Notes", "resolution_notes"},
		{"123abc", "abc"},
		{"_1_x", "x"},
		{"a___b", "a_b"},
		{"X-Coordinate (State Plane)", "x_coordinate_state_plane_"},
		{"Café", "caf_"},
		{"", "col"},
		{"___", "col"},
		{"42", "col"},
		{"BBL", "bbl"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumnName(tt.in))
		})
	}
}

func TestNormalizeColumnName_Idempotent(t *testing.T) {
	inputs := []string{
		"unique_key", "Created Date", "__Resolution Notes", "123abc", "a___b",
		"X-Coordinate (State Plane)", "Café", "", "___", "Park_Borough", "due date 2",
	}

	for _, in := range inputs {
		once := NormalizeColumnName(in)
		assert.Equal(t, once, NormalizeColumnName(once), "input %q", in)
		assert.Regexp(t, `^[a-z][a-z0-9_]*$`, once)
		assert.NotContains(t, once, "__")
	}
}

func TestPlanRenames(t *testing.T) {
	renames, err := PlanRenames([]string{"unique_key", "Created Date", "__Resolution Notes", "borough"})
	require.NoError(t, err)

	want := []ColumnRename{
		{From: "Created Date", To: "created_date"},
		{From: "__Resolution Notes", To: "resolution_notes"},
	}
	if diff := cmp.Diff(want, renames); diff != "" {
		t.Errorf("renames mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanRenames_AlreadyNormalized(t *testing.T) {
	renames, err := PlanRenames([]string{"unique_key", "created_date", "borough"})
	require.NoError(t, err)
	assert.Empty(t, renames)
}

func TestPlanRenames_Collision(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{"two raw names", []string{"Due Date", "due-date"}},
		{"rename onto existing column", []string{"status", "Status"}},
		{"both empty", []string{"", "__"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renames, err := PlanRenames(tt.columns)
			require.ErrorIs(t, err, ErrColumnCollision)
			assert.Nil(t, renames)
		})
	}
}
