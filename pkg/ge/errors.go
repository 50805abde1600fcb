package ge

import "github.com/zeebo/errs"

// Error is the error class for the ge container format.
var Error = errs.Class("ge")
