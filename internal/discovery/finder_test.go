package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/autograde/internal/discovery"
	"github.com/smartystreets/goconvey/convey"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestNotebooks(t *testing.T) {
	convey.Convey("Given a directory tree with notebooks", t, func() {
		root := t.TempDir()
		touch(t, filepath.Join(root, "b.ipynb"))
		touch(t, filepath.Join(root, "a.ipynb"))
		touch(t, filepath.Join(root, "sub", "c.ipynb"))
		touch(t, filepath.Join(root, "sub", "notes.txt"))
		touch(t, filepath.Join(root, ".ipynb_checkpoints", "a-checkpoint.ipynb"))
		touch(t, filepath.Join(root, "sub", ".ipynb_checkpoints", "c-checkpoint.ipynb"))

		convey.Convey("When discovering notebooks", func() {
			found, err := discovery.Notebooks(root, ".ipynb", ".ipynb_checkpoints")

			convey.Convey("Then checkpoint copies and other files are excluded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(found, convey.ShouldResemble, []string{
					filepath.Join(root, "a.ipynb"),
					filepath.Join(root, "b.ipynb"),
					filepath.Join(root, "sub", "c.ipynb"),
				})
			})
		})

		convey.Convey("When the root does not exist", func() {
			_, err := discovery.Notebooks(filepath.Join(root, "missing"), ".ipynb", ".ipynb_checkpoints")

			convey.Convey("Then the walk error is surfaced", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the extension is empty", func() {
			found, err := discovery.Notebooks(root, "", ".ipynb_checkpoints")

			convey.Convey("Then discovery fails with a sentinel error", func() {
				convey.So(err, convey.ShouldWrap, discovery.ErrEmptyExtension)
				convey.So(found, convey.ShouldBeNil)
			})
		})
	})
}
