package transcript

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want VideoID
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"param order", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with time", "https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ?start=10", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"odd host", "https://x/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"dash and underscore", "https://www.youtube.com/watch?v=a-b_c-d_e-f", "a-b_c-d_e-f"},
		{"surrounding space", "  https://youtu.be/dQw4w9WgXcQ \n", "dQw4w9WgXcQ"},
		{"nocookie embed", "https://youtube-nocookie.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"long path segment before query", "https://host/abcdefghijklm/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"11-char segment before query", "https://host/abcdefghijk/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live", "https://www.youtube.com/live/dQw4w9WgXcQ?feature=share", "dQw4w9WgXcQ"},
		{"no scheme", "youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"fragment param", "https://www.youtube.com/watch#v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveVideoIDInvalid(t *testing.T) {
	for _, u := range []string{
		"",
		"not a url",
		"https://www.youtube.com/",
		"https://youtu.be/short",
		"https://www.youtube.com/watch?v=dQw4w9W!XcQ",
		"https://www.youtube.com/watch?v=dQw4w9",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQxyz",
		"https://abcdefghijk/",
		"https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv",
	} {
		t.Run(u, func(t *testing.T) {
			_, err := ResolveVideoID(u)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}

func TestResolveVideoIDRandomIDs(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	rng := rand.New(rand.NewSource(42))
	layouts := []string{
		"https://www.youtube.com/watch?v=%s",
		"https://www.youtube.com/watch?list=PL1&v=%s&index=3",
		"https://m.youtube.com/watch?app=desktop&v=%s",
		"https://youtu.be/%s",
		"https://www.youtube.com/embed/%s",
	}
	for i := 0; i < 200; i++ {
		b := make([]byte, 11)
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		id := string(b)
		for _, layout := range layouts {
			u := fmt.Sprintf(layout, id)
			got, err := ResolveVideoID(u)
			require.NoError(t, err, u)
			assert.Equal(t, VideoID(id), got, u)
		}
	}
}

func TestVideoIDWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", VideoID("dQw4w9WgXcQ").WatchURL())
}
