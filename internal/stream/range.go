package stream

import (
	"fmt"
	"strconv"
	"strings"
)

// parseRange parses a single-span HTTP range header of the form
// "bytes=<start>-[<end>]" against a resource of the given total size.
// An absent end defaults to size-1; an end past the resource is clamped.
// Multi-span ranges, non-byte units, and ranges starting at or past the
// end of the resource all fail with ErrBadRange.
func parseRange(header string, size int64) (start, end int64, err error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("%w: unsupported range unit in %q", ErrBadRange, header)
	}
	if strings.Contains(spec, ",") {
		return 0, 0, fmt.Errorf("%w: multiple ranges not supported in %q", ErrBadRange, header)
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: malformed range %q", ErrBadRange, header)
	}

	start, err = strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("%w: malformed range start in %q", ErrBadRange, header)
	}

	end = size - 1
	if endStr = strings.TrimSpace(endStr); endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return 0, 0, fmt.Errorf("%w: malformed range end in %q", ErrBadRange, header)
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start > end {
		return 0, 0, fmt.Errorf("%w: range start %d after end %d", ErrBadRange, start, end)
	}
	if start >= size {
		return 0, 0, fmt.Errorf("%w: range start %d beyond size %d", ErrBadRange, start, size)
	}

	return start, end, nil
}
