// Package mediastore defines the id-addressed media file abstraction.
package mediastore

// Kind selects the media category a file belongs to. It doubles as the
// directory name under the assets root.
type Kind string

const (
	KindAvatar Kind = "avatars"
	KindImage  Kind = "images"
)

// Provider is the interface for media file operations. Files are owned
// by paths derived deterministically from the post id; nothing else
// references them.
type Provider interface {
	// Write persists data verbatim to <root>/<kind>/<id>.png.
	Write(kind Kind, id int64, data []byte) error
	// URLPath returns the public path a browser uses to load the file,
	// e.g. /assets/avatars/3.png.
	URLPath(kind Kind, id int64) string
}
