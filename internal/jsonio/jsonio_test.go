package jsonio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportMarshalOmitsEmptyOptionalFields(t *testing.T) {
	e := Export{
		Name:     "myapp",
		Revision: "1.0.0",
		Packages: []Package{
			{Name: "left-pad", Revision: "1.0.0", Snapshot: "deadbeef", Reference: "cafebabe", URL: "file:///left-pad"},
		},
	}

	data, err := e.Marshal()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"name": "myapp"`)
	assert.Contains(t, s, `"left-pad"`)
	assert.NotContains(t, s, `"author"`)
	assert.NotContains(t, s, `"mirror"`)
}

func TestExportMarshalIncludesOptionalFieldsWhenSet(t *testing.T) {
	e := Export{
		Name:     "myapp",
		Revision: "1.0.0",
		Packages: []Package{
			{
				Name:        "left-pad",
				Revision:    "1.0.0",
				Author:      "someone",
				Email:       "someone@example.com",
				Description: "pads strings",
				Snapshot:    "deadbeef",
				Reference:   "cafebabe",
				URL:         "file:///left-pad",
				Mirror:      "file:///mirror/left-pad",
			},
		},
	}

	data, err := e.Marshal()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"author": "someone"`)
	assert.Contains(t, s, `"mirror": "file:///mirror/left-pad"`)
}

func TestUnmarshalImportRoundTrip(t *testing.T) {
	data := []byte(`{"packages":[{"name":"left-pad","revision":"1.0.0","url":"file:///left-pad"}]}`)

	im, err := Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, im.Packages, 1)
	assert.Equal(t, "left-pad", im.Packages[0].Name)
	assert.Equal(t, "1.0.0", im.Packages[0].Revision)
	assert.Equal(t, "file:///left-pad", im.Packages[0].URL)
}

func TestUnmarshalRejectsInvalidJSON(t *testing.T) {
	_, err := Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}
