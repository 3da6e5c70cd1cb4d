package firestore

import "github.com/oncowatch/oncowatch/pkg/domain/interfaces"

var ErrNotFound = interfaces.ErrNotFound
