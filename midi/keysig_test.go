package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestKeyName(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("C", KeyName(smf.Key{Key: 0, IsMajor: true}))
	assert.Equal("Bb", KeyName(smf.Key{Key: 10, IsMajor: true, Num: 2, IsFlat: true}))
	assert.Equal("F#", KeyName(smf.Key{Key: 6, IsMajor: true, Num: 6}))
	assert.Equal("Am", KeyName(smf.Key{Key: 9}))
	assert.Equal("Bbm", KeyName(smf.Key{Key: 10, Num: 5, IsFlat: true}))
}

func TestParseKeyNameRoundTrips(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{
		"C", "G", "D", "F", "Bb", "Eb", "Ab", "Db", "Gb", "F#",
		"Am", "Em", "Dm", "Gm", "Bbm", "Ebm", "F#m", "C#m",
	} {
		assert.Equal(name, KeyName(ParseKeyName(name)), "key %v", name)
	}
}

func TestParseKeyNameSpelledOutForms(t *testing.T) {
	assert := assert.New(t)

	k := ParseKeyName("Bb major")
	assert.Equal(uint8(10), k.Key)
	assert.True(k.IsMajor)
	assert.True(k.IsFlat)
	assert.Equal(uint8(2), k.Num)

	k = ParseKeyName("B minor")
	assert.Equal(uint8(11), k.Key)
	assert.False(k.IsMajor)
	assert.Equal(uint8(2), k.Num)
}

func TestParseKeyNameUnknownKeepsTonic(t *testing.T) {
	k := ParseKeyName("H")
	assert.Equal(t, uint8(0), k.Key)
	assert.True(t, k.IsMajor)
}
