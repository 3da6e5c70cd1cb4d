package memory

import "github.com/oncowatch/oncowatch/pkg/domain/interfaces"

var ErrNotFound = interfaces.ErrNotFound
