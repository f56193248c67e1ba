package cmd

import "github.com/ardnew/bindexpr/lang"

var (
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrOutput      = lang.NewError("write output")
)
