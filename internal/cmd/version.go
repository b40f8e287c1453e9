package cmd

import (
	"fmt"

	"github.com/Alia5/giopgen/internal/codegen/common"
)

type Version struct{}

func (v *Version) Run() error {
	ver, err := common.GetVersion()
	if err != nil {
		return err
	}
	fmt.Println("giopgen", ver)
	return nil
}
