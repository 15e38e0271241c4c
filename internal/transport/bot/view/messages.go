package view

const StartMessage = `👋 <b>Deal Radar</b>

Команды:
/run — запустить цикл поиска сделок
/quota — остаток дневной квоты
/deals — последние найденные сделки
/status — состояние системы`

const (
	RunStarted      = "🔄 Запускаю цикл поиска..."
	RunQuotaDenied  = "⛔ Дневная квота исчерпана. Сброс: %s"
	RunFetchFailed  = "❌ Не удалось получить список лотов, цикл прерван"
	RunFailed       = "❌ Цикл завершился с ошибкой: %v"
	NoDealsYet      = "Пока ничего не найдено"
	QuotaTemplate   = "📊 Квота: %d из %d, осталось %d\n⏰ Сброс: %s"
	DealsListLimit  = 10
	TimestampLayout = "2006-01-02 15:04 MST"
)
