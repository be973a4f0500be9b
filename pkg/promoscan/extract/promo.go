package extract

import (
	"fmt"
	"regexp"
	"strconv"
)

const promoWindow = 5

var promotional = regexp.MustCompile(`(?i)(?:промо|намал|отстъпк|специалн|супер цена|топ цена|разпродажба|изгодн|оферта|\bsale\b|discount|special|\boffer|[-−–]\s*\d{1,2}\s*%|\d{1,2}\s*%\s*(?:off|отстъпка))`)

// Date matchers, scanned in this order on every window line.
var datePatterns = []*regexp.Regexp{
	// 01.10 - 07.10, 01.10.2025 – 07.10.2025
	regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.?(?:\d{2,4})?\s*[-–—]\s*(\d{1,2})\.(\d{1,2})`),
	// 07/10/2025, 07-10-25
	regexp.MustCompile(`(?:^|[^\d.,])(\d{1,2})[/\-](\d{1,2})[/\-](?:\d{4}|\d{2})(?:$|[^\d])`),
	// от 01.10 до 07.10, from 1.10 to 7.10
	regexp.MustCompile(`(?i)(?:от|from)\s+(\d{1,2})[./](\d{1,2})\.?(?:\d{2,4})?\s*(?:г\.?\s*)?(?:до|to|till|until)\s+(\d{1,2})[./](\d{1,2})`),
	// валидно до 07.10, valid until 7.10
	regexp.MustCompile(`(?i)(?:до|until|till)\s+(\d{1,2})[./](\d{1,2})`),
}

var (
	untilWording  = regexp.MustCompile(`(?i)(?:(?:^|\s)до\s|\buntil\b|\btill\b|\bto\b|валид|\bvalid)`)
	discountToken = regexp.MustCompile(`[-−–]\s*(\d{1,2})\s*%`)
)

// PromoContext is the promotional metadata around an anchor line.
type PromoContext struct {
	IsPromotional   bool
	Start           *string
	End             *string
	DiscountPercent *int
}

// DetectPromotion flags promotional wording on the anchor line and searches
// lines[i-5..i+5] for a validity window. Date matches are applied in scan
// order, so the last one overwrites the endpoints it carries.
func DetectPromotion(lines []string, i int) PromoContext {
	var ctx PromoContext
	if i < 0 || i >= len(lines) {
		return ctx
	}

	ctx.IsPromotional = promotional.MatchString(lines[i])

	lo, hi := clampWindow(len(lines), i, promoWindow)
	for idx := lo; idx <= hi; idx++ {
		line := lines[idx]
		for _, p := range datePatterns {
			for _, m := range p.FindAllStringSubmatch(line, -1) {
				start, end, ok := dateRange(m[1:], untilWording.MatchString(line))
				if !ok {
					continue
				}
				if start != nil {
					ctx.Start = start
				}
				ctx.End = end
			}
		}
	}

	for _, idx := range windowOrder(len(lines), i, priceWindow) {
		if m := discountToken.FindStringSubmatch(lines[idx]); m != nil {
			if pct, err := strconv.Atoi(m[1]); err == nil && pct > 0 && pct < 100 {
				ctx.DiscountPercent = &pct
				break
			}
		}
	}

	return ctx
}

// dateRange turns captured day/month groups into "DD.MM" endpoints. Only a
// four-group capture on a line with until-type wording yields a start.
func dateRange(groups []string, until bool) (start, end *string, ok bool) {
	if len(groups) >= 4 {
		to, ok := dayMonth(groups[2], groups[3])
		if !ok {
			return nil, nil, false
		}
		if !until {
			return nil, &to, true
		}
		from, ok := dayMonth(groups[0], groups[1])
		if !ok {
			return nil, nil, false
		}
		return &from, &to, true
	}

	to, ok := dayMonth(groups[0], groups[1])
	if !ok {
		return nil, nil, false
	}
	return nil, &to, true
}

func dayMonth(d, m string) (string, bool) {
	day, err := strconv.Atoi(d)
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%02d.%02d", day, month), true
}

func clampWindow(n, i, radius int) (int, int) {
	lo, hi := i-radius, i+radius
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}
