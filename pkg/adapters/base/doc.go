// Package base содержит общие helpers для адаптеров БД.
//
// ValueFormatter преобразует значения Go в SQL литералы; адаптеры задают
// только экранирование строк (BackslashEscape для MySQL, DoubleQuoteEscape
// для SQLite).
//
// ImportHelper преобразует строки в bulk.Request:
//
//	INSERT INTO `t` (`a`,`b`) VALUES (1,'x'),(2,'y')
//
// и стратегию adapters.ImportStrategy в параметры bulk:
//
//	replace -> ON DUPLICATE KEY UPDATE для всех неключевых колонок
//	ignore  -> INSERT IGNORE (id не восстанавливаются)
//	fail    -> обычный INSERT
//
// Session реализует bulk.Session поверх database/sql. Работает только на
// выделенном *sql.Conn или на *sql.Tx: LAST_INSERT_ID и число затронутых
// строк принадлежат соединению, которое выполнило запрос. Вложенные scope
// становятся savepoint. SessionDialect задает то, что отличается между
// серверами: запрос BEGIN, запрос лимита пакета, классификацию ошибок и
// то, какой id возвращает драйвер (первой или последней строки).
package base
