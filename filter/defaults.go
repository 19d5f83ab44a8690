package filter

// DefaultPatterns is the boilerplate found on the college's schedule sheets:
// approval headers, signatures, date stamps and weekday/week-parity markers.
var DefaultPatterns = []string{
	`УТВЕРЖДАЮ`,
	`Заместитель директора`,
	`Зам. директора по УМР`,
	`Заведующая отделением`,
	`Диспетчер _+Миронова Е.В`,
	`Расписание на сайте`,
	`«\d+»\s+\w+\s+\d{4}\s+года`,
	`\d{1,2}\s+\w+\s+\d{4}\s+года`,
	`Понедельник.*неделя`,
	`Вторник.*неделя`,
	`Среда.*неделя`,
	`Четверг.*неделя`,
	`Пятница.*неделя`,
	`Суббота.*неделя`,
}
