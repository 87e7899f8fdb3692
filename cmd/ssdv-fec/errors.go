package main

import "errors"

var errRateOutOfRange = errors.New("--rate must be in (0, 1]")
