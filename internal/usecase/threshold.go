package usecase

// Движок пересечения порогов: чистая функция состояния
// (новое количество, последнее уведомлённое состояние) -> уведомлять или нет.
//
// Группы уведомлений: 20 (ровно 20), 10 (ровно 10), 5 (диапазон 1..5).
// Количества 0, 6-9 и 11-19 не попадают ни в одну группу; значения выше
// потолка до движка не доходят — такие записи удаляются раньше.

type thresholdClass struct {
	level int32 // конкретное значение, которое будет зафиксировано как «уведомили на N»
	group int32 // одна из групп 20 / 10 / 5
}

// classifyThreshold относит количество ровно к одной группе.
func classifyThreshold(quantity int32) (thresholdClass, bool) {
	switch {
	case quantity == 20:
		return thresholdClass{level: 20, group: 20}, true
	case quantity == 10:
		return thresholdClass{level: 10, group: 10}, true
	case quantity >= 1 && quantity <= 5:
		return thresholdClass{level: quantity, group: 5}, true
	default:
		return thresholdClass{}, false
	}
}

// shouldNotify решает, нужна ли рассылка:
//   - по товару ещё ни разу не уведомляли;
//   - группа изменилась относительно последней уведомлённой;
//   - внутри критической группы 5 количество выросло строго выше последнего
//     уведомлённого значения (повторные падения без чистого изменения
//     спама не создают).
func shouldNotify(c thresholdClass, lastLevel, lastGroup *int32) bool {
	if lastGroup == nil {
		// Первое попадание товара в зеркало внутри группы само по себе
		// достойно уведомления.
		return true
	}

	if c.group != *lastGroup {
		return true
	}

	if c.group == 5 && lastLevel != nil && c.level > *lastLevel {
		return true
	}

	return false
}
