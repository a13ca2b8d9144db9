package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ocrConfig = `
<View>
  <Image name="image" value="$ocr"/>
  <Labels name="label" toName="image">
    <Label value="Material Description" background="green"/>
    <Label value="Depth Interval" background="blue"/>
  </Labels>
  <Rectangle name="bbox" toName="image" strokeWidth="3"/>
  <TextArea name="transcription" toName="image" editable="true" perRegion="true" required="true" maxSubmissions="1" rows="5" placeholder="Recognized Text" displayMode="region-list"/>
</View>`

func TestParseLabelConfig(t *testing.T) {
	li, err := ParseLabelConfig(ocrConfig)
	require.NoError(t, err)

	fromName, toName, dataKey, err := li.FirstTagOccurrence("TextArea", "Image")
	require.NoError(t, err)
	assert.Equal(t, "transcription", fromName)
	assert.Equal(t, "image", toName)
	assert.Equal(t, "ocr", dataKey)

	ctrl, ok := li.Control("label")
	require.True(t, ok)
	assert.Equal(t, []string{"Material Description", "Depth Interval"}, ctrl.Labels)

	obj, ok := li.Object("image")
	require.True(t, ok)
	assert.Equal(t, "Image", obj.Type)
	assert.Equal(t, "ocr", obj.ValueKey)
}

func TestParseLabelConfigErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ParseLabelConfig("   ")
		assert.Error(t, err)
	})

	t.Run("malformed XML", func(t *testing.T) {
		_, err := ParseLabelConfig("<View><Image name=")
		assert.Error(t, err)
	})

	t.Run("no matching pair", func(t *testing.T) {
		li, err := ParseLabelConfig(`<View><Image name="image" value="$ocr"/></View>`)
		require.NoError(t, err)
		_, _, _, err = li.FirstTagOccurrence("TextArea", "Image")
		assert.Error(t, err)
	})
}

func TestFirstTagOccurrenceIsCaseInsensitive(t *testing.T) {
	li, err := ParseLabelConfig(ocrConfig)
	require.NoError(t, err)

	fromName, _, _, err := li.FirstTagOccurrence("textarea", "image")
	require.NoError(t, err)
	assert.Equal(t, "transcription", fromName)
}
