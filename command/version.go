package command

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/utils"
)

var _ Cmd = &Version{}

type Version struct {
	out io.Writer
}

func NewVersion() *Version {
	return &Version{out: os.Stdout}
}

func (v Version) Execute(_ Args, _ *config.AuthProxy, _ *logrus.Entry) error {
	_, err := fmt.Fprintf(v.out, "%s %s %s %s\ngo version %s %s/%s\n",
		utils.ServiceName, utils.VersionName, utils.BuildDate, utils.BuildName,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}

func (v Version) Usage() {
	println("Usage of version:\n  version	Print current version and build information.")
}
