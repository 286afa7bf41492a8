package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/autograde/internal/adapters/engine"
	"github.com/okian/autograde/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// recordingInvoker captures the command lines instead of running anything.
type recordingInvoker struct {
	commands []string
	streamed []bool
	exitCode int
	err      error
}

func (r *recordingInvoker) Invoke(ctx context.Context, name string, args []string, stream bool) (engine.Result, error) {
	r.commands = append(r.commands, name+" "+strings.Join(args, " "))
	r.streamed = append(r.streamed, stream)
	if r.err != nil {
		return engine.Result{}, r.err
	}
	return engine.Result{ExitCode: r.exitCode}, nil
}

func TestCLIEngine(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	convey.Convey("Given a docker-backed engine with a recording invoker", t, func() {
		inv := &recordingInvoker{}
		eng, err := engine.New("docker", engine.WithInvoker(inv))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When building the image", func() {
			res, err := eng.Build(ctx, engine.BuildSpec{ContextDir: "/proj", Tag: "autograde"})

			convey.Convey("Then the engine build command line is issued", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.ExitCode, convey.ShouldEqual, 0)
				convey.So(res.RunID, convey.ShouldNotBeEmpty)
				convey.So(inv.commands, convey.ShouldResemble, []string{"docker build -t autograde /proj"})
				convey.So(inv.streamed[0], convey.ShouldBeTrue)
			})
		})

		convey.Convey("When building quietly", func() {
			_, err := eng.Build(ctx, engine.BuildSpec{ContextDir: ".", Tag: "autograde", Quiet: true})

			convey.Convey("Then output is captured instead of streamed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(inv.streamed[0], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When running a notebook without a context directory", func() {
			_, err := eng.Run(ctx, engine.RunSpec{
				Image:         "autograde",
				TestScript:    "/abs/test.py",
				Notebook:      "/abs/nb.ipynb",
				TargetDir:     "/abs/out",
				MountTest:     "/autograde/test.py",
				MountNotebook: "/autograde/notebook.ipynb",
				MountTarget:   "/autograde/target",
				MountContext:  "/autograde/context",
				UID:           1000,
			})

			convey.Convey("Then mounts and user identity are passed through", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(inv.commands, convey.ShouldResemble, []string{
					"docker run" +
						" -v /abs/test.py:/autograde/test.py" +
						" -v /abs/nb.ipynb:/autograde/notebook.ipynb" +
						" -v /abs/out:/autograde/target" +
						" -u 1000 autograde",
				})
			})
		})

		convey.Convey("When running a notebook with a context directory", func() {
			_, err := eng.Run(ctx, engine.RunSpec{
				Image:         "autograde",
				TestScript:    "/abs/test.py",
				Notebook:      "/abs/nb.ipynb",
				TargetDir:     "/abs/out",
				ContextDir:    "/abs/data",
				MountTest:     "/autograde/test.py",
				MountNotebook: "/autograde/notebook.ipynb",
				MountTarget:   "/autograde/target",
				MountContext:  "/autograde/context",
				UID:           1000,
			})

			convey.Convey("Then the context directory is mounted read-only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(inv.commands[0], convey.ShouldContainSubstring, " -v /abs/data:/autograde/context:ro ")
			})
		})

		convey.Convey("When the engine exits non-zero", func() {
			inv.exitCode = 3
			res, err := eng.Run(ctx, engine.RunSpec{Image: "autograde", UID: 1})

			convey.Convey("Then the exit code is data, not an error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.ExitCode, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the engine binary cannot be run", func() {
			inv.err = errors.New("executable file not found")
			_, err := eng.Build(ctx, engine.BuildSpec{ContextDir: ".", Tag: "autograde"})

			convey.Convey("Then the invocation failure is wrapped", func() {
				convey.So(err, convey.ShouldWrap, engine.ErrInvocationFailed)
			})
		})
	})

	convey.Convey("Given an unsupported backend", t, func() {
		eng, err := engine.New("lxc")

		convey.Convey("Then construction fails", func() {
			convey.So(eng, convey.ShouldBeNil)
			convey.So(err, convey.ShouldWrap, engine.ErrUnsupportedBackend)
		})
	})

	convey.Convey("Given the podman backend", t, func() {
		inv := &recordingInvoker{}
		eng, err := engine.New("podman", engine.WithInvoker(inv))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When building, the podman binary is invoked", func() {
			_, err := eng.Build(ctx, engine.BuildSpec{ContextDir: ".", Tag: "autograde"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(inv.commands[0], convey.ShouldStartWith, "podman build")
		})
	})
}
