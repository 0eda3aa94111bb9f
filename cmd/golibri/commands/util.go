package commands

import (
	"strconv"

	"golibri-studio/internal/errs"
)

func parseFromTo(fromArg, toArg string) (from, to int, err error) {
	from, err = strconv.Atoi(fromArg)
	if err != nil {
		return 0, 0, errs.New(errs.KindInvalidArgument, "commands.parseFromTo", err)
	}
	to, err = strconv.Atoi(toArg)
	if err != nil {
		return 0, 0, errs.New(errs.KindInvalidArgument, "commands.parseFromTo", err)
	}
	return from, to, nil
}
